package socketio

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackResult struct {
	ack *Ack
	err error
}

func collect() (func(*Ack, error), <-chan ackResult) {
	ch := make(chan ackResult, 4)
	return func(ack *Ack, err error) { ch <- ackResult{ack, err} }, ch
}

func TestAcksResolve(t *testing.T) {
	should := assert.New(t)
	must := require.New(t)

	m := newMetrics(nil, "test")
	a := newAcks(m)
	cb, ch := collect()

	id0 := a.add(context.Background(), "/", time.Minute, cb)
	id1 := a.add(context.Background(), "/chat", time.Minute, cb)
	should.NotEqual(id0, id1)
	should.Equal(2, a.count())
	should.Equal(float64(2), testutil.ToFloat64(m.pendingAcks))

	must.NoError(a.resolve(&Ack{Namespace: "/chat", ID: id1, Args: []json.RawMessage{json.RawMessage(`1`)}}))
	r := <-ch
	must.NoError(r.err)
	should.Equal(id1, r.ack.ID)

	should.ErrorIs(a.resolve(&Ack{Namespace: "/chat", ID: id1}), ErrUnknownAck)
	should.ErrorIs(a.resolve(&Ack{Namespace: "/chat", ID: id0}), ErrUnknownAck, "namespace must match")

	should.Equal(1, a.count())
	should.Equal(float64(1), testutil.ToFloat64(m.acks.WithLabelValues("ok")))
}

func TestAcksTimeout(t *testing.T) {
	m := newMetrics(nil, "test")
	a := newAcks(m)
	cb, ch := collect()

	id := a.add(context.Background(), "/", 10*time.Millisecond, cb)

	r := wait(t, ch)
	assert.ErrorIs(t, r.err, ErrAckTimeout)
	assert.Nil(t, r.ack)
	assert.Equal(t, 0, a.count())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.acks.WithLabelValues("timeout")))

	assert.ErrorIs(t, a.resolve(&Ack{Namespace: "/", ID: id}), ErrUnknownAck)
	select {
	case <-ch:
		t.Fatal("ack settled twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestAcksContext(t *testing.T) {
	a := newAcks(newMetrics(nil, "test"))
	cb, ch := collect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	a.add(ctx, "/", time.Minute, cb)

	r := wait(t, ch)
	assert.ErrorIs(t, r.err, ErrAckTimeout)
	assert.ErrorIs(t, r.err, context.DeadlineExceeded)

	ctx, cancel = context.WithCancel(context.Background())
	a.add(ctx, "/", time.Minute, cb)
	cancel()

	r = wait(t, ch)
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.NotErrorIs(t, r.err, ErrAckTimeout)
}

func TestAcksFailNamespace(t *testing.T) {
	a := newAcks(newMetrics(nil, "test"))
	cb, ch := collect()

	a.add(context.Background(), "/chat", time.Minute, cb)
	keep := a.add(context.Background(), "/", time.Minute, cb)

	a.failNamespace("/chat", ErrNamespaceClosed)
	assert.ErrorIs(t, wait(t, ch).err, ErrNamespaceClosed)
	assert.Equal(t, 1, a.count())

	a.drop(keep)
	assert.Equal(t, 0, a.count())

	a.add(context.Background(), "/", time.Minute, cb)
	a.add(context.Background(), "/chat", time.Minute, cb)
	a.failAll(ErrNamespaceClosed)
	assert.ErrorIs(t, wait(t, ch).err, ErrNamespaceClosed)
	assert.ErrorIs(t, wait(t, ch).err, ErrNamespaceClosed)
	assert.Equal(t, 0, a.count())
}
