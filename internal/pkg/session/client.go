package session

import (
	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/balugcath/tcpecho/internal/pkg/socket"
	log "github.com/sirupsen/logrus"
)

// Client ...
type Client struct {
	flow
	reply []byte
}

// NewClient ...
func NewClient(cfg *config.Config, logger socket.Logger, metricer metricer, recorder recorder) *Client {
	return &Client{flow: newFlow(roleClient, cfg, logger, metricer, recorder)}
}

// Start connects, sends message and reads one reply of at most
// BufferSize-1 bytes. An empty ip skips the connect and an empty message
// skips the exchange, neither is an error.
func (s *Client) Start(ip string, port uint16, message string) (err error) {
	s.begin()
	s.reply = nil
	defer func() { s.finish(err) }()

	client, err := s.sockets.NewTCP()
	if err != nil {
		return err
	}
	defer client.Close()

	if ip == "" {
		log.Debugln("session client no address, skip connect")
		return nil
	}
	peer, err := s.sockets.Connect(client, ip, port)
	if err != nil {
		return err
	}
	s.session.Peer = peer.String()
	s.ClientConnInc(s.role)
	defer s.ClientConnDec(s.role)

	if message == "" {
		log.Debugln("session client no message, skip exchange")
		return nil
	}

	n, err := s.sockets.Send(client, []byte(message))
	if err != nil {
		return err
	}
	s.transferred(directionSend, n)

	buf := make([]byte, s.Config.BufferSize)
	n, err = s.sockets.Receive(client, buf)
	if err != nil {
		return err
	}
	s.transferred(directionRecv, n)
	s.reply = append([]byte(nil), buf[:n]...)
	return nil
}

// Reply returns the bytes received by the last Start.
func (s *Client) Reply() []byte {
	return s.reply
}
