package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Conn is a transport connection exchanging text frames. Reads happen on
// one goroutine only; WriteMessage and Close are safe for concurrent use.
type Conn interface {
	// ReadMessage blocks until the next text frame arrives. A *CloseError
	// is returned when the peer closed the connection with a status code.
	ReadMessage() (string, error)
	WriteMessage(text string) error
	Close() error
}

// Dialer opens transport connections.
type Dialer interface {
	// Name is the transport name sent as the "transport" query parameter
	// and matched against the upgrades announced in the handshake.
	Name() string
	Dial(ctx context.Context, u *url.URL, header http.Header) (Conn, error)
}
