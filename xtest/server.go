package xtest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

// NewServer starts a websocket server whose connections are handled by
// serve as peers. It returns the base URL of the server.
func NewServer(t testing.TB, serve func(*Peer)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := &wsConn{ws: ws}
		defer conn.Close()

		serve(NewPeer(conn))
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

type wsConn struct {
	ws *websocket.Conn

	mu sync.Mutex
}

func (c *wsConn) ReadMessage() (string, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return "", &transport.CloseError{Code: closeErr.Code, Text: closeErr.Text}
		}
		return "", err
	}
	return string(data), nil
}

func (c *wsConn) WriteMessage(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
