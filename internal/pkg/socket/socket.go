package socket

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

const (
	// DefaultBacklog ...
	DefaultBacklog = 4
	// DefaultBufferSize ...
	DefaultBufferSize = 80
)

// Logger receives the lines meant for the host.
type Logger interface {
	Log(string)
}

// LoggerFunc ...
type LoggerFunc func(string)

// Log ...
func (f LoggerFunc) Log(message string) {
	f(message)
}

type nopLogger struct{}

func (nopLogger) Log(string) {}

// Sockets performs blocking socket calls for a single flow and keeps count
// of the handles it has handed out.
type Sockets struct {
	Logger
	open int32
}

// NewSockets ...
func NewSockets(logger Logger) *Sockets {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Sockets{Logger: logger}
}

// Open returns how many handles created here are not closed yet.
func (s *Sockets) Open() int {
	return int(atomic.LoadInt32(&s.open))
}

func (s *Sockets) logf(format string, args ...interface{}) {
	s.Logger.Log(fmt.Sprintf(format, args...))
}

func (s *Sockets) track(fd int) *Handle {
	atomic.AddInt32(&s.open, 1)
	return &Handle{
		fd:      fd,
		release: func() { atomic.AddInt32(&s.open, -1) },
	}
}

// NewTCP ...
func (s *Sockets) NewTCP() (*Handle, error) {
	s.logf("Constructing a new TCP socket...")
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, report(SocketCreationFailed, err)
	}
	unix.CloseOnExec(fd)
	return s.track(fd), nil
}

// Bind binds h to the wildcard address. Port 0 asks for an ephemeral port.
func (s *Sockets) Bind(h *Handle, port uint16) error {
	s.logf("Binding to port %d.", port)
	fd, err := h.descriptor()
	if err != nil {
		return report(BindFailed, err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)}); err != nil {
		return report(BindFailed, err)
	}
	return nil
}

// BoundPort ...
func (s *Sockets) BoundPort(h *Handle) (uint16, error) {
	fd, err := h.descriptor()
	if err != nil {
		return 0, report(PortQueryFailed, err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, report(PortQueryFailed, err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, report(PortQueryFailed, unix.EAFNOSUPPORT)
	}
	port := uint16(in4.Port)
	s.logf("Bound to random port %d.", port)
	return port, nil
}

// Listen ...
func (s *Sockets) Listen(h *Handle, backlog int) error {
	s.logf("Listening on socket with a backlog of %d pending connections.", backlog)
	fd, err := h.descriptor()
	if err != nil {
		return report(ListenFailed, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return report(ListenFailed, err)
	}
	return nil
}

// Accept blocks until one client connects.
func (s *Sockets) Accept(h *Handle) (*Handle, Address, error) {
	s.logf("Waiting for a client connection...")
	fd, err := h.descriptor()
	if err != nil {
		return nil, Address{}, report(AcceptFailed, err)
	}
	var (
		nfd int
		sa  unix.Sockaddr
	)
	err = ignoringEINTR(func() (err error) {
		nfd, sa, err = unix.Accept(fd)
		return err
	})
	if err != nil {
		return nil, Address{}, report(AcceptFailed, err)
	}
	unix.CloseOnExec(nfd)
	client := s.track(nfd)
	peer := addressOf(sa)
	s.logf("Client connection from %s.", peer)
	return client, peer, nil
}

// Receive reads at most len(buf)-1 bytes and terminates them with a zero
// byte. Zero means the peer has shut down its side.
func (s *Sockets) Receive(h *Handle, buf []byte) (int, error) {
	s.logf("Receiving from the socket...")
	fd, err := h.descriptor()
	if err != nil {
		return 0, report(ReceiveFailed, err)
	}
	if len(buf) < 2 {
		return 0, report(ReceiveFailed, unix.EINVAL)
	}
	var n int
	err = ignoringEINTR(func() (err error) {
		n, err = unix.Read(fd, buf[:len(buf)-1])
		return err
	})
	if err != nil {
		return 0, report(ReceiveFailed, err)
	}
	buf[n] = 0
	if n > 0 {
		s.logf("Received %d bytes: %s", n, buf[:n])
	} else {
		s.logf("Client disconnected.")
	}
	return n, nil
}

// Send writes b once. Zero means the peer is gone.
func (s *Sockets) Send(h *Handle, b []byte) (int, error) {
	s.logf("Sending to the socket...")
	fd, err := h.descriptor()
	if err != nil {
		return 0, report(SendFailed, err)
	}
	var n int
	err = ignoringEINTR(func() (err error) {
		n, err = unix.Write(fd, b)
		return err
	})
	if err != nil {
		return 0, report(SendFailed, err)
	}
	if n > 0 {
		s.logf("Sent %d bytes: %s", n, b[:n])
	} else {
		s.logf("Client disconnected.")
	}
	return n, nil
}

// Connect returns the parsed peer address once connected.
func (s *Sockets) Connect(h *Handle, ip string, port uint16) (Address, error) {
	s.logf("Connecting to %s:%d...", ip, port)
	addr, err := ParseAddress(ip, port)
	if err != nil {
		return Address{}, report(AddressResolutionFailed, err)
	}
	fd, err := h.descriptor()
	if err != nil {
		return Address{}, report(ConnectFailed, err)
	}
	if err := connect(fd, addr.sockaddr()); err != nil {
		return Address{}, report(ConnectFailed, err)
	}
	s.logf("Connected.")
	return addr, nil
}

// connect finishes an attempt interrupted by a signal, the kernel keeps
// establishing the connection after EINTR.
func connect(fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	if err != unix.EINTR {
		return err
	}
	err = ignoringEINTR(func() error {
		_, err := unix.Poll([]unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}, -1)
		return err
	})
	if err != nil {
		return err
	}
	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soErr != 0 {
		return unix.Errno(soErr)
	}
	return nil
}

func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}
