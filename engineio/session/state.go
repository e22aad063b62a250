package session

import "fmt"

// State is the lifecycle state of a Session.
type State int32

const (
	// Connecting is the state from Open until the handshake arrives.
	Connecting State = iota
	// Open accepts outbound messages and relays inbound ones.
	Open
	// Upgrading probes the alternate transport. Messages keep flowing on
	// the current one.
	Upgrading
	// Closing releases the timers and the transport.
	Closing
	// Closed is terminal after an orderly close.
	Closed
	// Failed is terminal after an unrecoverable transport error.
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Upgrading:
		return "upgrading"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// Reason tells why a session closed.
type Reason int

const (
	// ClientRequested is a close asked by the local side.
	ClientRequested Reason = iota
	// ServerClosed is a close packet or a normal close status from the peer.
	ServerClosed
	// Timeout is a missed heartbeat or handshake deadline.
	Timeout
	// TransportError is a failed read or write, or a protocol violation.
	TransportError
)

func (r Reason) String() string {
	switch r {
	case ClientRequested:
		return "client requested"
	case ServerClosed:
		return "server closed"
	case Timeout:
		return "timeout"
	case TransportError:
		return "transport error"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// CloseEvent is delivered once per session when it closes.
type CloseEvent struct {
	Reason Reason
	// Status is the last close status seen on the transport, 0 if none.
	Status int
	// Err is the cause, nil for an orderly close.
	Err error
}
