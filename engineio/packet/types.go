package packet

// Type is the type of packet
type Type byte

const (
	// OPEN is sent from the server when a new transport is opened. Its
	// payload carries the handshake parameters.
	OPEN Type = iota
	// CLOSE requests the close of this transport but does not shutdown the
	// connection itself.
	CLOSE
	// PING is sent to check the other side is alive. The receiver answers
	// with a PONG carrying the same data.
	PING
	// PONG answers a PING.
	PONG
	// MESSAGE is actual message, the payload is handed to the upper layer.
	MESSAGE
	// UPGRADE is sent once a probe on the new transport succeeded. It asks
	// the server to flush its cache on the old transport and switch.
	UPGRADE
	// NOOP is a noop packet. Used primarily to force a poll cycle.
	NOOP
)

func (id Type) String() string {
	switch id {
	case OPEN:
		return "open"
	case CLOSE:
		return "close"
	case PING:
		return "ping"
	case PONG:
		return "pong"
	case MESSAGE:
		return "message"
	case UPGRADE:
		return "upgrade"
	case NOOP:
		return "noop"
	}
	return "unknown"
}

// StringByte converts a Type to its discriminator character.
func (id Type) StringByte() byte {
	return byte(id) + '0'
}

// ByteToType converts a discriminator character to Type. ok is false when
// b does not name a known packet type.
func ByteToType(b byte) (typ Type, ok bool) {
	if b < '0' || b > NOOP.StringByte() {
		return 0, false
	}
	return Type(b - '0'), true
}
