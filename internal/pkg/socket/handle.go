package socket

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Handle owns one stream socket descriptor.
type Handle struct {
	fd      int
	once    sync.Once
	closed  int32
	release func()
}

// Close releases the descriptor. Only the first call does anything.
func (s *Handle) Close() error {
	var err error
	s.once.Do(func() {
		atomic.StoreInt32(&s.closed, 1)
		err = unix.Close(s.fd)
		if s.release != nil {
			s.release()
		}
	})
	return err
}

// Closed ...
func (s *Handle) Closed() bool {
	return atomic.LoadInt32(&s.closed) == 1
}

// descriptor refuses to hand out a released fd, the number may already
// belong to another socket.
func (s *Handle) descriptor() (int, error) {
	if s == nil || s.Closed() {
		return -1, unix.EBADF
	}
	return s.fd, nil
}

// Address is an IPv4 endpoint. Port is kept in host order here, the
// conversion to network order happens in the sockaddr passed to the kernel.
type Address struct {
	IP   [4]byte
	Port uint16
}

// ParseAddress accepts a dotted-decimal IPv4 literal only.
func ParseAddress(ip string, port uint16) (Address, error) {
	var a Address
	if strings.Contains(ip, ":") {
		return a, errors.Wrapf(ErrInvalidAddress, "parse %q", ip)
	}
	v4 := net.ParseIP(ip).To4()
	if v4 == nil {
		return a, errors.Wrapf(ErrInvalidAddress, "parse %q", ip)
	}
	copy(a.IP[:], v4)
	a.Port = port
	return a, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.IP[0], a.IP[1], a.IP[2], a.IP[3], a.Port)
}

func (a Address) sockaddr() *unix.SockaddrInet4 {
	return &unix.SockaddrInet4{Port: int(a.Port), Addr: a.IP}
}

func addressOf(sa unix.Sockaddr) Address {
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return Address{}
	}
	return Address{IP: in4.Addr, Port: uint16(in4.Port)}
}
