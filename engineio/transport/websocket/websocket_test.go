package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

func newServer(t *testing.T, handle func(*websocket.Conn)) *url.URL {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		handle(ws)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return u
}

func TestTransportName(t *testing.T) {
	assert.Equal(t, "websocket", Default.Name())
}

func TestDialReadWrite(t *testing.T) {
	must := require.New(t)
	should := assert.New(t)

	u := newServer(t, func(ws *websocket.Conn) {
		for {
			typ, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(typ, append([]byte("echo:"), data...)); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Default.Dial(ctx, u, nil)
	must.NoError(err)
	defer conn.Close()

	must.NoError(conn.WriteMessage(`42["hello"]`))

	msg, err := conn.ReadMessage()
	must.NoError(err)
	should.Equal(`echo:42["hello"]`, msg)

	should.NoError(conn.Close())
	should.NoError(conn.Close())
}

func TestReadCloseError(t *testing.T) {
	u := newServer(t, func(ws *websocket.Conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_, _, _ = ws.ReadMessage()
	})

	conn, err := Default.Dial(context.Background(), u, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ReadMessage()

	var closeErr *transport.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
	assert.Equal(t, "restart", closeErr.Text)
	assert.True(t, closeErr.Normal())
}

func TestReadBinaryFrame(t *testing.T) {
	u := newServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		_, _, _ = ws.ReadMessage()
	})

	conn, err := Default.Dial(context.Background(), u, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ReadMessage()
	assert.ErrorIs(t, err, transport.ErrInvalidFrame)
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := &url.URL{Scheme: "ws", Host: "127.0.0.1:1", Path: "/socket.io/"}
	_, err := Default.Dial(ctx, u, nil)
	assert.Error(t, err)
}
