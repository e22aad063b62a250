package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sioclient/go-socket.io-client/engineio/session"
	"github.com/sioclient/go-socket.io-client/parser"
)

// Event is an event received from the server.
type Event struct {
	parser.Packet

	// Handled reports whether a handler was registered for the event when
	// it was delivered.
	Handled bool

	ctx context.Context
}

// Context returns the context of the delivery. Passed to Disconnect from a
// handler, it makes Disconnect return without waiting for the disconnect
// notification.
func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Scan decodes the arguments of the event into dst, in order. Missing
// arguments leave their destination untouched.
func (e *Event) Scan(dst ...interface{}) error {
	return scanArgs(e.Args, dst)
}

// Ack is an acknowledgement received for an emitted event.
type Ack struct {
	Namespace string
	ID        uint64
	Args      []json.RawMessage
}

// Scan decodes the arguments of the ack into dst, in order.
func (a *Ack) Scan(dst ...interface{}) error {
	return scanArgs(a.Args, dst)
}

// DisconnectEvent is delivered when a namespace or the whole connection
// goes away. Namespace is empty for the connection.
type DisconnectEvent struct {
	Namespace string

	session.CloseEvent
}

func scanArgs(args []json.RawMessage, dst []interface{}) error {
	for i, d := range dst {
		if i >= len(args) {
			return nil
		}
		if err := json.Unmarshal(args[i], d); err != nil {
			return fmt.Errorf("scan arg %d: %w", i, err)
		}
	}
	return nil
}

// listeners calls every registered function in registration order.
type listeners[T any] struct {
	mu  sync.RWMutex
	fns []func(T)
}

func (l *listeners[T]) add(fn func(T)) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.fns = append(l.fns, fn)
}

func (l *listeners[T]) emit(v T) {
	l.mu.RLock()
	fns := l.fns
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}
