package session

import (
	"time"

	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/balugcath/tcpecho/internal/pkg/journal"
	"github.com/balugcath/tcpecho/internal/pkg/metric"
	"github.com/balugcath/tcpecho/internal/pkg/socket"
	log "github.com/sirupsen/logrus"
)

const (
	roleServer = "server"
	roleClient = "client"

	directionRecv = "recv"
	directionSend = "send"
)

type metricer interface {
	ClientConnInc(string)
	ClientConnDec(string)
	TransferBytes(string, string, int)
	Failure(string, string)
}

type recorder interface {
	Record(journal.Session) error
}

// flow is the state of a single invocation. The logger is captured in
// sockets once, when the flow is created.
type flow struct {
	*config.Config
	metricer
	recorder
	role    string
	sockets *socket.Sockets
	session journal.Session
}

func newFlow(role string, cfg *config.Config, logger socket.Logger, metricer metricer, recorder recorder) flow {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Backlog <= 0 || cfg.BufferSize < 2 {
		c := *cfg
		if c.Backlog <= 0 {
			c.Backlog = socket.DefaultBacklog
		}
		if c.BufferSize < 2 {
			c.BufferSize = socket.DefaultBufferSize
		}
		log.Debugf("session %s backlog %d buffer %d out of range, using %d %d",
			role, cfg.Backlog, cfg.BufferSize, c.Backlog, c.BufferSize)
		cfg = &c
	}
	if metricer == nil {
		metricer = metric.NewMetric(cfg)
	}
	return flow{
		Config:   cfg,
		metricer: metricer,
		recorder: recorder,
		role:     role,
		sockets:  socket.NewSockets(logger),
	}
}

func (s *flow) begin() {
	log.Debugf("session %s start", s.role)
	s.session = journal.Session{Role: s.role, Started: time.Now()}
}

func (s *flow) transferred(direction string, n int) {
	s.TransferBytes(s.role, direction, n)
	switch direction {
	case directionRecv:
		s.session.BytesIn += n
	case directionSend:
		s.session.BytesOut += n
	}
}

func (s *flow) finish(err error) {
	defer log.Debugf("session %s exit", s.role)
	s.session.Finished = time.Now()
	if err != nil {
		log.Errorf("session %s %s", s.role, err)
		s.session.Err = err.Error()
		if kind, ok := socket.KindOf(err); ok {
			s.Failure(s.role, kind.String())
		}
	}
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(s.session); err != nil {
		log.Errorf("session %s %s", s.role, err)
	}
}

// Session returns the journal entry of the last invocation.
func (s *flow) Session() journal.Session {
	return s.session
}

// StartTCPServer echoes for exactly one client on port, 0 meaning an
// ephemeral port, with the default backlog and buffer size.
func StartTCPServer(logger socket.Logger, port uint16) error {
	return NewServer(config.Default(), logger, nil, nil).Start(port)
}

// StartTCPClient sends message to ip:port and reads one reply.
func StartTCPClient(logger socket.Logger, ip string, port uint16, message string) error {
	return NewClient(config.Default(), logger, nil, nil).Start(ip, port, message)
}
