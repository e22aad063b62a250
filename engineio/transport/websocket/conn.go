package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

const closeGracePeriod = time.Second

type conn struct {
	ws *websocket.Conn

	writeLocker sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{
		ws: ws,
	}
}

func (c *conn) ReadMessage() (string, error) {
	typ, data, err := c.ws.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return "", &transport.CloseError{Code: closeErr.Code, Text: closeErr.Text}
		}
		return "", err
	}

	if typ != websocket.TextMessage {
		return "", transport.ErrInvalidFrame
	}
	return string(data), nil
}

func (c *conn) WriteMessage(text string) error {
	c.writeLocker.Lock()
	defer c.writeLocker.Unlock()

	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close sends a close frame and releases the socket. Only the first call
// has effect.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.writeLocker.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		c.writeLocker.Unlock()

		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
