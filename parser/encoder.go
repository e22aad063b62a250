package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Encode encodes p as the payload of a transport MESSAGE packet:
//
//	<type>[<attachments>-][<namespace>[?<query>],][<id>][<payload>]
func Encode(p Packet) (string, error) {
	if p.Type > BinaryAck {
		return "", ErrInvalidPacketType
	}

	var b strings.Builder
	b.WriteByte('0' + byte(p.Type))

	if p.Type.IsBinary() {
		b.WriteString(strconv.Itoa(p.Attachments))
		b.WriteByte('-')
	}

	if p.Namespace != "" && p.Namespace != DefaultNamespace {
		b.WriteString(p.Namespace)
		if p.Query != "" {
			b.WriteByte('?')
			b.WriteString(p.Query)
		}
		b.WriteByte(',')
	}

	if p.NeedAck {
		b.WriteString(strconv.FormatUint(p.ID, 10))
	}

	for i, arg := range p.Args {
		if !json.Valid(arg) {
			return "", fmt.Errorf("%w: arg %d is not JSON", ErrInvalidArgument, i)
		}
	}

	switch p.Type {
	case Event, BinaryEvent:
		name, err := json.Marshal(p.Event)
		if err != nil {
			return "", fmt.Errorf("%w: event name: %v", ErrInvalidArgument, err)
		}
		writeArray(&b, append([]json.RawMessage{name}, p.Args...))

	case Ack, BinaryAck:
		writeArray(&b, p.Args)

	default:
		switch len(p.Args) {
		case 0:
		case 1:
			b.Write(p.Args[0])
		default:
			return "", fmt.Errorf("%w: %s packet takes one value, got %d", ErrInvalidArgument, p.Type, len(p.Args))
		}
	}

	return b.String(), nil
}

func writeArray(b *strings.Builder, values []json.RawMessage) {
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(v)
	}
	b.WriteByte(']')
}
