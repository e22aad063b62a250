package transport

import (
	"fmt"

	"github.com/sioclient/go-socket.io-client/utils"
)

// ErrInvalidHandshake is returned when the OPEN payload misses a required
// field or is not a JSON object.
const ErrInvalidHandshake = utils.ConstError("invalid handshake")

// ErrInvalidFrame is returned when a binary frame is read from a text-only
// transport.
const ErrInvalidFrame = utils.ConstError("invalid frame type")

// CloseError reports that the peer closed the connection.
type CloseError struct {
	Code int
	Text string
}

func (e *CloseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("transport closed with status %d", e.Code)
	}
	return fmt.Sprintf("transport closed with status %d: %s", e.Code, e.Text)
}

// Normal reports whether the peer closed the connection deliberately.
func (e *CloseError) Normal() bool {
	return e.Code == StatusNormalClosure || e.Code == StatusGoingAway
}

// Close status codes shared by every transport.
const (
	StatusNormalClosure = 1000
	StatusGoingAway     = 1001
	StatusNoStatus      = 1005
	StatusAbnormal      = 1006
)
