package session

import (
	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/balugcath/tcpecho/internal/pkg/socket"
)

// Server ...
type Server struct {
	flow
}

// NewServer ...
func NewServer(cfg *config.Config, logger socket.Logger, metricer metricer, recorder recorder) *Server {
	return &Server{flow: newFlow(roleServer, cfg, logger, metricer, recorder)}
}

// Start binds, accepts one client and echoes until the client goes away.
// Both sockets are closed before it returns.
func (s *Server) Start(port uint16) (err error) {
	s.begin()
	defer func() { s.finish(err) }()

	server, err := s.sockets.NewTCP()
	if err != nil {
		return err
	}
	defer server.Close()

	if err := s.sockets.Bind(server, port); err != nil {
		return err
	}
	if port == 0 {
		if _, err := s.sockets.BoundPort(server); err != nil {
			return err
		}
	}
	if err := s.sockets.Listen(server, s.Config.Backlog); err != nil {
		return err
	}

	client, peer, err := s.sockets.Accept(server)
	if err != nil {
		return err
	}
	defer client.Close()

	s.session.Peer = peer.String()
	s.ClientConnInc(s.role)
	defer s.ClientConnDec(s.role)

	return s.echo(client)
}

func (s *Server) echo(client *socket.Handle) error {
	buf := make([]byte, s.Config.BufferSize)
	for {
		n, err := s.sockets.Receive(client, buf)
		if err != nil || n == 0 {
			return err
		}
		s.transferred(directionRecv, n)

		n, err = s.sockets.Send(client, buf[:n])
		if err != nil || n == 0 {
			return err
		}
		s.transferred(directionSend, n)
	}
}
