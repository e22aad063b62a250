package socketio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type pendingAck struct {
	namespace string
	callback  func(*Ack, error)

	timer *time.Timer
	stop  func() bool
}

func (p *pendingAck) release() {
	p.timer.Stop()
	if p.stop != nil {
		p.stop()
	}
}

// acks correlates emitted events with the acknowledgements of the server.
// Every pending ack settles exactly once: resolved, timed out or cancelled.
type acks struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*pendingAck

	metrics *metrics
}

func newAcks(m *metrics) *acks {
	return &acks{
		pending: make(map[uint64]*pendingAck),
		metrics: m,
	}
}

// add records callback and returns a fresh ack id. The ack fails with
// ErrAckTimeout after timeout or at the deadline of ctx, and with the
// error of ctx when it is cancelled.
func (a *acks) add(ctx context.Context, namespace string, timeout time.Duration, callback func(*Ack, error)) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++

	p := &pendingAck{
		namespace: namespace,
		callback:  callback,
	}
	p.timer = time.AfterFunc(timeout, func() {
		a.fail(id, fmt.Errorf("%w: no ack for %d within %s", ErrAckTimeout, id, timeout))
	})
	if ctx.Done() != nil {
		p.stop = context.AfterFunc(ctx, func() {
			err := ctx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %w", ErrAckTimeout, err)
			}
			a.fail(id, err)
		})
	}

	a.pending[id] = p
	a.metrics.pendingAcks.Inc()

	return id
}

func (a *acks) take(id uint64) (*pendingAck, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[id]
	if !ok {
		return nil, false
	}
	delete(a.pending, id)
	a.metrics.pendingAcks.Dec()

	p.release()
	return p, true
}

// resolve settles the pending ack matching ack.
func (a *acks) resolve(ack *Ack) error {
	a.mu.Lock()
	p, ok := a.pending[ack.ID]
	if !ok || p.namespace != ack.Namespace {
		a.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownAck, ack.ID)
	}
	delete(a.pending, ack.ID)
	a.metrics.pendingAcks.Dec()
	a.mu.Unlock()

	p.release()
	a.metrics.ack("ok")
	p.callback(ack, nil)
	return nil
}

// fail settles the pending ack id with err.
func (a *acks) fail(id uint64, err error) {
	p, ok := a.take(id)
	if !ok {
		return
	}

	a.settleFailed(p, err)
}

// drop forgets the pending ack id without calling it back.
func (a *acks) drop(id uint64) {
	a.take(id)
}

// failNamespace settles every pending ack of namespace with err.
func (a *acks) failNamespace(namespace string, err error) {
	a.failWhere(func(p *pendingAck) bool { return p.namespace == namespace }, err)
}

// failAll settles every pending ack with err.
func (a *acks) failAll(err error) {
	a.failWhere(func(*pendingAck) bool { return true }, err)
}

func (a *acks) failWhere(match func(*pendingAck) bool, err error) {
	a.mu.Lock()
	var failed []*pendingAck
	for id, p := range a.pending {
		if !match(p) {
			continue
		}
		delete(a.pending, id)
		a.metrics.pendingAcks.Dec()
		failed = append(failed, p)
	}
	a.mu.Unlock()

	for _, p := range failed {
		p.release()
		a.settleFailed(p, err)
	}
}

func (a *acks) settleFailed(p *pendingAck, err error) {
	if errors.Is(err, ErrAckTimeout) {
		a.metrics.ack("timeout")
	} else {
		a.metrics.ack("cancelled")
	}
	p.callback(nil, err)
}

func (a *acks) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.pending)
}
