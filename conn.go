package socketio

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/session"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
	"github.com/sioclient/go-socket.io-client/parser"
)

// conn is one engine.io session and the namespaces multiplexed on it.
type conn struct {
	client *Client
	log    logr.Logger

	sess       *session.Session
	namespaces *namespaces
	acks       *acks
}

func newConn(c *Client) *conn {
	ret := &conn{
		client:     c,
		log:        c.log,
		namespaces: newNamespaces(),
		acks:       newAcks(c.metrics),
	}

	m := c.metrics
	ret.sess = session.New(c.opts.getTransport(), c.opts.sessionOptions(c.log), session.Handlers{
		OnOpen:      ret.onOpen,
		OnMessage:   ret.onMessage,
		OnError:     c.exception,
		OnUpgrade:   ret.onUpgrade,
		OnClose:     ret.onClose,
		OnPacketIn:  func(p packet.Packet) { m.frame("in", p) },
		OnPacketOut: func(p packet.Packet) { m.frame("out", p) },
	})

	return ret
}

// open opens the session. Protocol 3 servers connect the default namespace
// right after the handshake, so it is registered as pending beforehand.
func (c *conn) open(ctx context.Context, url string) error {
	if c.client.opts.getProtocolVersion() == session.Protocol3 {
		c.namespaces.Add(DefaultNamespace, "")
	}

	return c.sess.Open(ctx, url)
}

func (c *conn) isClosed() bool {
	select {
	case <-c.sess.Done():
		return true
	default:
		return false
	}
}

func (c *conn) close(ctx context.Context) error {
	return c.sess.Close(ctx)
}

// join connects namespace and waits for the acknowledgement of the
// server. Joining a connected namespace returns at once.
func (c *conn) join(ctx context.Context, namespace string) error {
	name, query := splitNamespace(namespace)

	st, created := c.namespaces.Add(name, query)
	if created {
		p := parser.Packet{Header: parser.Header{Type: parser.Connect, Namespace: name, Query: query}}
		if err := c.send(ctx, p); err != nil {
			c.namespaces.Cancel(st, err)
			return err
		}
	}

	select {
	case <-st.ready:
		return st.err
	case <-ctx.Done():
		err := fmt.Errorf("%w: join %s: %w", session.ErrTimeout, name, ctx.Err())
		c.namespaces.Cancel(st, err)
		return err
	}
}

// leave sends a Disconnect packet for namespace and tears it down.
func (c *conn) leave(ctx context.Context, namespace string) error {
	name, _ := splitNamespace(namespace)
	if !c.namespaces.Known(name) {
		return nil
	}

	p := parser.Packet{Header: parser.Header{Type: parser.Disconnect, Namespace: name}}
	err := c.send(ctx, p)

	c.teardown(name, session.CloseEvent{Reason: session.ClientRequested})
	return err
}

// teardown removes ns, cancels its pending acks and notifies when it was
// connected.
func (c *conn) teardown(ns string, ev session.CloseEvent) bool {
	existed, wasConnected := c.namespaces.Delete(ns, ErrNamespaceClosed)
	if !existed {
		return false
	}

	c.acks.failNamespace(ns, fmt.Errorf("%w: %s", ErrNamespaceClosed, ns))

	if wasConnected {
		c.log.Info("namespace disconnected", "namespace", ns, "reason", ev.Reason.String())
		c.client.disconnected.emit(DisconnectEvent{Namespace: ns, CloseEvent: ev})
	}
	return true
}

func (c *conn) send(ctx context.Context, p parser.Packet) error {
	text, err := parser.Encode(p)
	if err != nil {
		return err
	}

	if err := c.sess.Send(ctx, text); err != nil {
		return fmt.Errorf("send %s: %w", p, err)
	}
	return nil
}

func (c *conn) onOpen(params transport.ConnParameters) {
	c.log.V(1).Info("session open", "sid", params.SID)
}

func (c *conn) onUpgrade(name string) {
	c.log.Info("upgraded", "transport", name)
	c.client.upgraded.emit(name)
}

func (c *conn) onMessage(text string) {
	p, err := parser.Decode(text)
	if err != nil {
		c.client.exception(fmt.Errorf("decode %q: %w", text, err))
		return
	}

	c.log.V(1).Info("recv", "packet", p.String())

	if p.Type.IsBinary() {
		c.client.exception(newErrorMessage(p.Namespace, fmt.Errorf("%w: %s", ErrUnsupportedPacket, p)))
		return
	}

	switch p.Type {
	case parser.Connect:
		connectPacketHandler(c, p)
	case parser.Disconnect:
		disconnectPacketHandler(c, p)
	case parser.Event:
		eventPacketHandler(c, p)
	case parser.Ack:
		ackPacketHandler(c, p)
	case parser.Error:
		errorPacketHandler(c, p)
	}
}

// onClose runs once, after every other notification of the session.
func (c *conn) onClose(ev session.CloseEvent) {
	c.namespaces.Clear(fmt.Errorf("%w: %w", ErrNamespaceClosed, session.ErrClosed))
	c.acks.failAll(ErrNamespaceClosed)

	c.client.metrics.disconnect(ev.Reason)
	c.log.Info("disconnected", "reason", ev.Reason.String(), "status", ev.Status, "err", ev.Err)
	c.client.disconnected.emit(DisconnectEvent{CloseEvent: ev})
}
