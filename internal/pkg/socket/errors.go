package socket

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Kind names the step of a flow that failed.
type Kind int

const (
	_ Kind = iota
	// SocketCreationFailed ...
	SocketCreationFailed
	// BindFailed ...
	BindFailed
	// PortQueryFailed ...
	PortQueryFailed
	// ListenFailed ...
	ListenFailed
	// AcceptFailed ...
	AcceptFailed
	// AddressResolutionFailed ...
	AddressResolutionFailed
	// ConnectFailed ...
	ConnectFailed
	// ReceiveFailed ...
	ReceiveFailed
	// SendFailed ...
	SendFailed
)

var kindNames = map[Kind]string{
	SocketCreationFailed:    "socket creation failed",
	BindFailed:              "bind failed",
	PortQueryFailed:         "port query failed",
	ListenFailed:            "listen failed",
	AcceptFailed:            "accept failed",
	AddressResolutionFailed: "address resolution failed",
	ConnectFailed:           "connect failed",
	ReceiveFailed:           "receive failed",
	SendFailed:              "send failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown socket error %d", int(k))
}

var (
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("invalid IPv4 address")
)

// Error is what every failed socket operation returns. Err is usually a
// unix.Errno, so its text comes from the platform error string table.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

// Unwrap ...
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func report(kind Kind, err error) error {
	log.Debugf("socket %s: %s", kind, err)
	return &Error{Kind: kind, Err: err}
}
