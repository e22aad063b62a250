package session

import "github.com/sioclient/go-socket.io-client/utils"

const (
	// ErrTimeout is returned when the handshake or a heartbeat deadline is
	// exceeded.
	ErrTimeout = utils.ConstError("session timeout")
	// ErrTransport wraps errors of the underlying transport.
	ErrTransport = utils.ConstError("transport error")
	// ErrProtocolViolation is returned when the peer sends a packet that is
	// not valid in the current state.
	ErrProtocolViolation = utils.ConstError("protocol violation")
	// ErrNotOpen is returned when sending before the handshake completed.
	ErrNotOpen = utils.ConstError("session not open")
	// ErrClosed is returned when sending on a closed session.
	ErrClosed = utils.ConstError("session closed")
	// ErrAlreadyStarted is returned when Open is called twice.
	ErrAlreadyStarted = utils.ConstError("session already started")

	errProbeFailed = utils.ConstError("upgrade probe failed")
)
