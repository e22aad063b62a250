package socketio

import (
	"context"
	"fmt"

	"github.com/sioclient/go-socket.io-client/engineio/session"
	"github.com/sioclient/go-socket.io-client/parser"
)

func connectPacketHandler(c *conn, p parser.Packet) {
	if c.namespaces.Connected(p.Namespace) {
		c.log.Info("namespace connected", "namespace", p.Namespace)
		c.client.connected.emit(p.Namespace)
		return
	}

	if c.namespaces.IsConnected(p.Namespace) {
		c.log.V(1).Info("duplicate connect", "namespace", p.Namespace)
		return
	}

	c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("%w: connect", ErrUnknownNamespace)))
}

func disconnectPacketHandler(c *conn, p parser.Packet) {
	if !c.teardown(p.Namespace, session.CloseEvent{Reason: session.ServerClosed}) {
		c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("%w: disconnect", ErrUnknownNamespace)))
	}
}

func eventPacketHandler(c *conn, p parser.Packet) {
	if !c.namespaces.IsConnected(p.Namespace) {
		c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("%w: event %q", ErrUnknownNamespace, p.Event)))
		return
	}

	var handlers []*funcHandler
	if h, ok := c.client.handlers.Get(p.Namespace); ok {
		handlers = h.getEventHandlers(p.Event)
	}

	e := &Event{Packet: p, Handled: len(handlers) > 0, ctx: c.sess.HandlerContext()}
	c.client.eventReceived.emit(e)

	var ret []interface{}
	for _, h := range handlers {
		r, err := h.Call(e)
		if err != nil {
			c.log.Error(err, "handler failed", "namespace", p.Namespace, "event", p.Event)
			c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("event %q: %w", p.Event, err)))
			continue
		}
		if ret == nil && len(r) > 0 {
			ret = r
		}
	}

	if p.NeedAck {
		answerAck(c, p, ret)
	}

	c.client.metrics.event(p.Namespace, e.Handled)
	if e.Handled {
		c.client.handledEvent.emit(e)
	} else {
		c.client.unhandledEvent.emit(e)
	}
}

// answerAck acknowledges an event of the server with the results of the
// first handler that returned any.
func answerAck(c *conn, p parser.Packet, ret []interface{}) {
	args, err := ackArgs(ret)
	if err != nil {
		c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("ack %d: %w", p.ID, err)))
		args = nil
	}

	ack := parser.Packet{
		Header: parser.Header{
			Type:      parser.Ack,
			Namespace: p.Namespace,
			ID:        p.ID,
			NeedAck:   true,
		},
		Args: args,
	}
	if err := c.send(context.Background(), ack); err != nil {
		c.log.Error(err, "answer ack", "namespace", p.Namespace, "id", p.ID)
	}
}

func ackPacketHandler(c *conn, p parser.Packet) {
	if !p.NeedAck {
		c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("%w: ack without id", parser.ErrMalformedPacket)))
		return
	}

	ack := &Ack{Namespace: p.Namespace, ID: p.ID, Args: p.Args}
	if err := c.acks.resolve(ack); err != nil {
		c.log.V(1).Info("ack dropped", "namespace", p.Namespace, "id", p.ID)
		c.client.exception(newErrorMessage(p.Namespace, err))
	}
}

// errorPacketHandler notifies the error. A pending connect of the
// namespace fails with it, a connected namespace stays connected.
func errorPacketHandler(c *conn, p parser.Packet) {
	msg := newErrorMessage(p.Namespace, newPeerError(p.Args))

	if !c.namespaces.Known(p.Namespace) {
		c.client.exception(fmt.Errorf("%w: %w", ErrUnknownNamespace, msg))
		return
	}

	if c.namespaces.Refuse(p.Namespace, msg) {
		c.log.Info("namespace refused", "namespace", p.Namespace, "err", msg.Err.Error())
	}

	c.client.errorReceived.emit(msg)
}
