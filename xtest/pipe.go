// Package xtest provides an in-memory transport and a scripted peer to
// exercise the client without a real server.
package xtest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

// ErrClosedPipe is returned when writing to a closed pipe.
var ErrClosedPipe = errors.New("xtest: write on closed pipe")

const pipeBuffer = 64

type pipeState struct {
	once sync.Once
	done chan struct{}
	err  error
}

// PipeConn is one end of an in-memory transport connection.
type PipeConn struct {
	in  chan string
	out chan string

	state *pipeState
}

// Pipe returns two connected ends.
func Pipe() (*PipeConn, *PipeConn) {
	a := make(chan string, pipeBuffer)
	b := make(chan string, pipeBuffer)
	state := &pipeState{done: make(chan struct{})}

	return &PipeConn{in: a, out: b, state: state}, &PipeConn{in: b, out: a, state: state}
}

// ReadMessage returns pending frames before reporting the close.
func (p *PipeConn) ReadMessage() (string, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}

	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.state.done:
		select {
		case msg := <-p.in:
			return msg, nil
		default:
		}
		return "", p.state.err
	}
}

func (p *PipeConn) WriteMessage(text string) error {
	select {
	case <-p.state.done:
		return ErrClosedPipe
	default:
	}

	select {
	case p.out <- text:
		return nil
	case <-p.state.done:
		return ErrClosedPipe
	}
}

// Close closes both ends. Readers see io.EOF.
func (p *PipeConn) Close() error {
	p.closeWith(io.EOF)
	return nil
}

// CloseWithStatus closes both ends. Readers see a *transport.CloseError.
func (p *PipeConn) CloseWithStatus(code int, text string) {
	p.closeWith(&transport.CloseError{Code: code, Text: text})
}

// Fail closes both ends. Readers see err.
func (p *PipeConn) Fail(err error) {
	p.closeWith(err)
}

// Closed is closed once either end is closed.
func (p *PipeConn) Closed() <-chan struct{} {
	return p.state.done
}

func (p *PipeConn) closeWith(err error) {
	p.state.once.Do(func() {
		p.state.err = err
		close(p.state.done)
	})
}

// Dialer hands out pipe ends and queues the server side as a Peer.
type Dialer struct {
	TransportName string
	// Err fails every Dial when set.
	Err error
	// Gate, when set, holds every Dial until it is closed or, unless
	// IgnoreContext is set, until the ctx of the Dial is done.
	Gate          chan struct{}
	IgnoreContext bool

	mu      sync.Mutex
	urls    []*url.URL
	peers   chan *Peer
	dialing chan struct{}
}

// NewDialer returns a Dialer named name.
func NewDialer(name string) *Dialer {
	return &Dialer{
		TransportName: name,
		peers:         make(chan *Peer, 16),
		dialing:       make(chan struct{}, 16),
	}
}

func (d *Dialer) Name() string {
	return d.TransportName
}

func (d *Dialer) Dial(ctx context.Context, u *url.URL, header http.Header) (transport.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case d.dialing <- struct{}{}:
	default:
	}
	if d.Gate != nil {
		if d.IgnoreContext {
			<-d.Gate
		} else {
			select {
			case <-d.Gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if d.Err != nil {
		return nil, d.Err
	}

	d.mu.Lock()
	d.urls = append(d.urls, u)
	d.mu.Unlock()

	client, server := Pipe()
	d.peers <- NewPeer(server)

	return client, nil
}

// URLs returns the URLs dialed so far.
func (d *Dialer) URLs() []*url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*url.URL(nil), d.urls...)
}
