package packet

import (
	"fmt"
	"strings"

	"github.com/sioclient/go-socket.io-client/utils"
)

// ErrMalformedFrame is returned when a frame is empty or starts with an
// unknown type discriminator.
const ErrMalformedFrame = utils.ConstError("malformed frame")

// Packet is a transport-framing packet.
type Packet struct {
	Type Type
	Data string
}

func (p Packet) String() string {
	if p.Data == "" {
		return p.Type.String()
	}
	return fmt.Sprintf("%s(%q)", p.Type, p.Data)
}

// Encode encodes p as a text frame.
func Encode(p Packet) string {
	var b strings.Builder
	b.Grow(len(p.Data) + 1)
	b.WriteByte(p.Type.StringByte())
	b.WriteString(p.Data)
	return b.String()
}

// Decode decodes a text frame.
func Decode(frame string) (Packet, error) {
	if frame == "" {
		return Packet{}, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}

	typ, ok := ByteToType(frame[0])
	if !ok {
		return Packet{}, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, frame[0])
	}

	return Packet{
		Type: typ,
		Data: frame[1:],
	}, nil
}
