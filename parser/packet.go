package parser

import (
	"encoding/json"
	"fmt"
)

// Type of packet.
type Type byte

const (
	// Connect type
	Connect Type = iota
	// Disconnect type
	Disconnect
	// Event type
	Event
	// Ack type
	Ack
	// Error type
	Error
	// BinaryEvent type
	BinaryEvent
	// BinaryAck type
	BinaryAck
)

func (t Type) String() string {
	switch t {
	case Connect:
		return "connect"
	case Disconnect:
		return "disconnect"
	case Event:
		return "event"
	case Ack:
		return "ack"
	case Error:
		return "error"
	case BinaryEvent:
		return "binary event"
	case BinaryAck:
		return "binary ack"
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

// IsBinary reports whether packets of t carry binary attachments.
func (t Type) IsBinary() bool {
	return t == BinaryEvent || t == BinaryAck
}

// DefaultNamespace is the namespace of packets without a namespace segment.
const DefaultNamespace = "/"

// Header of packet.
type Header struct {
	Type      Type
	Namespace string
	ID        uint64
	NeedAck   bool
	// Query is sent after the namespace of Connect packets.
	Query string
	// Attachments is the number of binary attachments that follow a
	// binary packet.
	Attachments int
}

// Packet is an application-messaging packet.
type Packet struct {
	Header

	// Event is the name of an Event packet.
	Event string
	// Args are the raw JSON values of the payload, without the event name.
	Args []json.RawMessage
}

func (p Packet) String() string {
	if p.Type == Event || p.Type == BinaryEvent {
		return fmt.Sprintf("%s %s %q (%d args)", p.Type, p.Namespace, p.Event, len(p.Args))
	}
	return fmt.Sprintf("%s %s (%d args)", p.Type, p.Namespace, len(p.Args))
}

// NewEvent builds an Event packet, marshalling args to JSON.
func NewEvent(namespace, event string, args ...interface{}) (Packet, error) {
	raw, err := MarshalArgs(args...)
	if err != nil {
		return Packet{}, err
	}

	return Packet{
		Header: Header{
			Type:      Event,
			Namespace: namespace,
		},
		Event: event,
		Args:  raw,
	}, nil
}

// MarshalArgs marshals each value to its JSON text.
func MarshalArgs(args ...interface{}) ([]json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}

	raw := make([]json.RawMessage, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: arg %d: %v", ErrInvalidArgument, i, err)
		}
		raw[i] = b
	}
	return raw, nil
}
