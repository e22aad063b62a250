package socketio

import (
	"encoding/json"
	"fmt"

	"github.com/sioclient/go-socket.io-client/utils"
)

const (
	// ErrAckTimeout fails a pending acknowledgement whose deadline elapsed.
	ErrAckTimeout = utils.ConstError("ack timeout")
	// ErrNamespaceClosed cancels pending operations of a namespace that
	// was torn down.
	ErrNamespaceClosed = utils.ConstError("namespace closed")
	// ErrNotConnected is returned when emitting on a namespace that is not
	// connected.
	ErrNotConnected = utils.ConstError("not connected")
	// ErrUnknownNamespace reports an inbound packet for a namespace the
	// client did not join.
	ErrUnknownNamespace = utils.ConstError("unknown namespace")
	// ErrInvalidHandler is returned when registering something that is not
	// a function.
	ErrInvalidHandler = utils.ConstError("invalid handler")
	// ErrUnsupportedPacket reports packets carrying binary attachments.
	ErrUnsupportedPacket = utils.ConstError("unsupported packet")
	// ErrUnknownAck reports an acknowledgement without a pending request.
	ErrUnknownAck = utils.ConstError("unknown ack")
)

// ErrorMessage is an error scoped to a namespace, such as an Error packet
// sent by the server.
type ErrorMessage struct {
	Namespace string

	Err error
}

func (e *ErrorMessage) Error() string {
	return fmt.Sprintf("error in namespace: (%s) with error: (%s)", e.Namespace, e.Err.Error())
}

func (e *ErrorMessage) Unwrap() error {
	return e.Err
}

func newErrorMessage(namespace string, err error) *ErrorMessage {
	return &ErrorMessage{
		Namespace: namespace,
		Err:       err,
	}
}

// PeerError is the payload of an Error packet.
type PeerError struct {
	Message string
	// Data is the raw payload, a JSON string or object.
	Data json.RawMessage
}

func (e *PeerError) Error() string {
	return e.Message
}

func newPeerError(args []json.RawMessage) *PeerError {
	if len(args) == 0 {
		return &PeerError{Message: "unknown error"}
	}

	e := &PeerError{Data: args[0]}

	var text string
	if err := json.Unmarshal(args[0], &text); err == nil {
		e.Message = text
		return e
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(args[0], &obj); err == nil && obj.Message != "" {
		e.Message = obj.Message
		return e
	}

	e.Message = string(args[0])
	return e
}
