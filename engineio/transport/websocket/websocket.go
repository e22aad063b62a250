package websocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

// Name is the transport name announced to the server.
const Name = "websocket"

// Transport dials websocket connections.
type Transport struct {
	ReadBufferSize  int
	WriteBufferSize int

	Subprotocols     []string
	TLSClientConfig  *tls.Config
	HandshakeTimeout time.Duration

	Proxy   func(*http.Request) (*url.URL, error)
	NetDial func(network, addr string) (net.Conn, error)
}

// Default is the default websocket transport.
var Default = &Transport{
	HandshakeTimeout: 45 * time.Second,
	Proxy:            http.ProxyFromEnvironment,
}

// Name returns "websocket".
func (t *Transport) Name() string {
	return Name
}

// Dial opens a websocket connection to u. http and https schemes are
// rewritten to ws and wss.
func (t *Transport) Dial(ctx context.Context, u *url.URL, header http.Header) (transport.Conn, error) {
	target := *u
	switch target.Scheme {
	case "http":
		target.Scheme = "ws"
	case "https":
		target.Scheme = "wss"
	}

	dialer := &websocket.Dialer{
		ReadBufferSize:   t.ReadBufferSize,
		WriteBufferSize:  t.WriteBufferSize,
		NetDial:          t.NetDial,
		Proxy:            t.Proxy,
		TLSClientConfig:  t.TLSClientConfig,
		HandshakeTimeout: t.HandshakeTimeout,
		Subprotocols:     t.Subprotocols,
	}

	conn, resp, err := dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (http status %d)", target.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target.Host, err)
	}

	return newConn(conn), nil
}
