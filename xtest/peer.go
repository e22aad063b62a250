package xtest

import (
	"strings"
	"testing"
	"time"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

// Timeout bounds every wait of the helpers.
var Timeout = 2 * time.Second

// Peer is the server side of a connection driven by a test.
type Peer struct {
	Conn transport.Conn

	frames chan string
	errs   chan error
}

// NewPeer starts reading conn in the background.
func NewPeer(conn transport.Conn) *Peer {
	p := &Peer{
		Conn:   conn,
		frames: make(chan string, pipeBuffer),
		errs:   make(chan error, 1),
	}

	go func() {
		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				p.errs <- err
				close(p.frames)
				return
			}
			p.frames <- msg
		}
	}()

	return p
}

// Accept waits for the next peer dialed through d.
func (d *Dialer) Accept(t testing.TB) *Peer {
	t.Helper()

	select {
	case p := <-d.peers:
		return p
	case <-time.After(Timeout):
		t.Fatalf("xtest: no connection dialed on %q", d.TransportName)
		return nil
	}
}

// WaitDial blocks until a Dial started.
func (d *Dialer) WaitDial(t testing.TB) {
	t.Helper()

	select {
	case <-d.dialing:
	case <-time.After(Timeout):
		t.Fatalf("xtest: no dial on %q", d.TransportName)
	}
}

// Send writes a raw frame.
func (p *Peer) Send(t testing.TB, frame string) {
	t.Helper()

	if err := p.Conn.WriteMessage(frame); err != nil {
		t.Fatalf("xtest: send %q: %s", frame, err)
	}
}

// Open sends the OPEN packet carrying params.
func (p *Peer) Open(t testing.TB, params transport.ConnParameters) {
	t.Helper()

	var b strings.Builder
	if _, err := params.WriteTo(&b); err != nil {
		t.Fatalf("xtest: encode params: %s", err)
	}
	p.Send(t, packet.Encode(packet.Packet{Type: packet.OPEN, Data: strings.TrimSpace(b.String())}))
}

// Message sends payload inside a MESSAGE packet.
func (p *Peer) Message(t testing.TB, payload string) {
	t.Helper()

	p.Send(t, packet.Encode(packet.Packet{Type: packet.MESSAGE, Data: payload}))
}

// Read waits for the next frame written by the client.
func (p *Peer) Read(t testing.TB) string {
	t.Helper()

	select {
	case msg, ok := <-p.frames:
		if !ok {
			t.Fatalf("xtest: connection closed while reading")
		}
		return msg
	case <-time.After(Timeout):
		t.Fatalf("xtest: no frame within %s", Timeout)
		return ""
	}
}

// ReadSkipping waits for the next frame that is not a heartbeat.
func (p *Peer) ReadSkipping(t testing.TB) string {
	t.Helper()

	for {
		msg := p.Read(t)
		if msg != "" && (msg[0] == packet.PING.StringByte() || msg[0] == packet.PONG.StringByte()) {
			continue
		}
		return msg
	}
}

// Expect fails the test when the next non heartbeat frame is not want.
func (p *Peer) Expect(t testing.TB, want string) {
	t.Helper()

	if got := p.ReadSkipping(t); got != want {
		t.Fatalf("xtest: expect frame %q, got %q", want, got)
	}
}

// Done waits until the client closes the connection and returns the read
// error observed on the peer side.
func (p *Peer) Done(t testing.TB) error {
	t.Helper()

	deadline := time.After(Timeout)
	for {
		select {
		case _, ok := <-p.frames:
			if !ok {
				return <-p.errs
			}
		case <-deadline:
			t.Fatalf("xtest: connection not closed within %s", Timeout)
			return nil
		}
	}
}
