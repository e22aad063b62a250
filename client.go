package socketio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/sioclient/go-socket.io-client/engineio/session"
	"github.com/sioclient/go-socket.io-client/parser"
)

// Client is client for socket.io server. Handlers and subscribers survive
// reconnects; namespaces and pending acks belong to one connection.
type Client struct {
	id   string
	opts Options
	log  logr.Logger

	metrics *metrics
	limiter *rate.Limiter

	handlers *namespaceHandlers

	mu   sync.Mutex
	conn *conn

	connected      listeners[string]
	disconnected   listeners[DisconnectEvent]
	eventReceived  listeners[*Event]
	handledEvent   listeners[*Event]
	unhandledEvent listeners[*Event]
	errorReceived  listeners[*ErrorMessage]
	exceptions     listeners[error]
	upgraded       listeners[string]
}

// NewClient returns a client. opts may be nil.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}

	id := newV4UUID()
	c := &Client{
		id:       id,
		opts:     *opts,
		log:      opts.getLogger().WithValues("client", id),
		metrics:  newMetrics(opts.Registerer, id),
		handlers: newNamespaceHandlers(),
	}

	if opts.EmitRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.EmitRate), opts.getEmitBurst())
	}

	return c
}

// ID returns the id of the client, used to label its logs and metrics.
func (c *Client) ID() string {
	return c.id
}

// Connect opens a connection to url and joins the default namespace and
// namespaces. A namespace may carry a query, as in "/chat?token=x". It
// fails when the server cannot be reached before ctx is done or the
// connect timeout elapses.
func (c *Client) Connect(ctx context.Context, url string, namespaces ...string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.getConnectTimeout())
	defer cancel()

	c.mu.Lock()
	if c.conn != nil && !c.conn.isClosed() {
		c.mu.Unlock()
		return session.ErrAlreadyStarted
	}
	conn := newConn(c)
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("connecting", "url", url)

	if err := conn.open(ctx, url); err != nil {
		c.log.Error(err, "connect failed", "url", url)
		return err
	}

	for _, ns := range append([]string{DefaultNamespace}, namespaces...) {
		if err := conn.join(ctx, ns); err != nil {
			c.log.Error(err, "join failed", "namespace", ns)
			c.closeConn(conn)
			return err
		}
	}

	return nil
}

// ConnectWithRetry calls Connect until it succeeds, waiting between
// attempts as configured by Options.Retry.
func (c *Client) ConnectWithRetry(ctx context.Context, url string, namespaces ...string) error {
	backoff := NewBackOff(c.opts.Retry)

	for {
		err := c.Connect(ctx, url, namespaces...)
		if err == nil || errors.Is(err, session.ErrAlreadyStarted) {
			return err
		}

		if limit := c.opts.Retry.MaxAttempts; limit > 0 && backoff.Attempts()+1 >= limit {
			return fmt.Errorf("connect after %d attempts: %w", limit, err)
		}

		delay := backoff.Duration()
		c.log.Info("retrying connect", "attempt", backoff.Attempts(), "delay", delay, "err", err.Error())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

func (c *Client) closeConn(conn *conn) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.getConnectTimeout())
	defer cancel()

	if err := conn.close(ctx); err != nil {
		c.log.Error(err, "close")
	}
}

// Disconnect closes the connection and waits until the disconnect
// notification was delivered or ctx is done. A handler passes the context
// of its event, see Event.Context, and Disconnect returns at once.
func (c *Client) Disconnect(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return nil
	}

	return conn.close(ctx)
}

// Connected reports whether namespace is connected.
func (c *Client) Connected(namespace string) bool {
	conn := c.current()
	if conn == nil {
		return false
	}

	name, _ := splitNamespace(namespace)
	return conn.namespaces.IsConnected(name)
}

// JoinNamespace connects namespace on the current connection and waits
// for the server to acknowledge it.
func (c *Client) JoinNamespace(ctx context.Context, namespace string) error {
	conn, err := c.active()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.getConnectTimeout())
	defer cancel()

	return conn.join(ctx, namespace)
}

// LeaveNamespace disconnects namespace. Its pending acks fail with
// ErrNamespaceClosed.
func (c *Client) LeaveNamespace(ctx context.Context, namespace string) error {
	conn, err := c.active()
	if err != nil {
		return err
	}

	return conn.leave(ctx, namespace)
}

// Emit sends event with args to the default namespace.
func (c *Client) Emit(ctx context.Context, event string, args ...interface{}) error {
	return c.EmitTo(ctx, DefaultNamespace, event, args...)
}

// EmitTo sends event with args to namespace.
func (c *Client) EmitTo(ctx context.Context, namespace, event string, args ...interface{}) error {
	conn, p, err := c.prepare(ctx, namespace, event, args)
	if err != nil {
		return err
	}

	return conn.send(ctx, p)
}

// EmitWithAck sends event with args to namespace and calls callback once
// with the acknowledgement of the server, or with an error wrapping
// ErrAckTimeout, ErrNamespaceClosed or the error of ctx. The callback is
// not called when EmitWithAck returns an error.
func (c *Client) EmitWithAck(ctx context.Context, namespace, event string, callback func(*Ack, error), args ...interface{}) error {
	if callback == nil {
		return fmt.Errorf("%w: nil ack callback", ErrInvalidHandler)
	}

	conn, p, err := c.prepare(ctx, namespace, event, args)
	if err != nil {
		return err
	}

	p.ID = conn.acks.add(ctx, p.Namespace, c.opts.getAckTimeout(), callback)
	p.NeedAck = true

	if err := conn.send(ctx, p); err != nil {
		conn.acks.drop(p.ID)
		return err
	}
	return nil
}

// Call sends event with args to namespace and waits for the
// acknowledgement. It must not be called from a handler, which would
// block the delivery of the acknowledgement.
func (c *Client) Call(ctx context.Context, namespace, event string, args ...interface{}) (*Ack, error) {
	type result struct {
		ack *Ack
		err error
	}
	ch := make(chan result, 1)

	err := c.EmitWithAck(ctx, namespace, event, func(ack *Ack, err error) {
		ch <- result{ack, err}
	}, args...)
	if err != nil {
		return nil, err
	}

	r := <-ch
	return r.ack, r.err
}

func (c *Client) prepare(ctx context.Context, namespace, event string, args []interface{}) (*conn, parser.Packet, error) {
	name, _ := splitNamespace(namespace)

	p, err := parser.NewEvent(name, event, args...)
	if err != nil {
		return nil, p, err
	}

	conn, err := c.active()
	if err != nil {
		return nil, p, err
	}
	if !conn.namespaces.IsConnected(name) {
		return nil, p, fmt.Errorf("%w: namespace %s", ErrNotConnected, name)
	}

	if err := ctx.Err(); err != nil {
		return nil, p, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, p, fmt.Errorf("emit %q: %w", event, err)
		}
	}

	return conn, p, nil
}

func (c *Client) current() *conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn
}

func (c *Client) active() (*conn, error) {
	conn := c.current()
	if conn == nil || conn.isClosed() {
		return nil, ErrNotConnected
	}
	return conn, nil
}

// On registers f to handle event on the default namespace.
func (c *Client) On(event string, f interface{}) error {
	return c.OnNamespace(DefaultNamespace, event, f)
}

// OnNamespace registers f to handle event on namespace. f is a function
// whose parameters are decoded from the arguments of the event, in order.
// Its first parameter may be *Event to receive the event itself. When the
// server asks for an acknowledgement, it carries the results of the first
// handler that returned any, a trailing error result excluded. Handlers of
// an event run in registration order.
func (c *Client) OnNamespace(namespace, event string, f interface{}) error {
	name, _ := splitNamespace(namespace)
	return c.handlers.GetOrCreate(name).OnEvent(event, f)
}

// OnConnected subscribes to namespace connections.
func (c *Client) OnConnected(f func(namespace string)) {
	c.connected.add(f)
}

// OnDisconnected subscribes to disconnections. The notification of the
// connection, with an empty namespace, follows every other notification of
// that connection.
func (c *Client) OnDisconnected(f func(DisconnectEvent)) {
	c.disconnected.add(f)
}

// OnEventReceived subscribes to every received event. It runs before the
// handlers of the event.
func (c *Client) OnEventReceived(f func(*Event)) {
	c.eventReceived.add(f)
}

// OnHandledEvent subscribes to events that had handlers.
func (c *Client) OnHandledEvent(f func(*Event)) {
	c.handledEvent.add(f)
}

// OnUnhandledEvent subscribes to events without handlers.
func (c *Client) OnUnhandledEvent(f func(*Event)) {
	c.unhandledEvent.add(f)
}

// OnErrorReceived subscribes to Error packets of the server.
func (c *Client) OnErrorReceived(f func(*ErrorMessage)) {
	c.errorReceived.add(f)
}

// OnException subscribes to recoverable errors: dropped frames and
// packets, failed handlers and unexpected acks.
func (c *Client) OnException(f func(error)) {
	c.exceptions.add(f)
}

// OnUpgraded subscribes to transport upgrades.
func (c *Client) OnUpgraded(f func(transport string)) {
	c.upgraded.add(f)
}

func (c *Client) exception(err error) {
	c.log.V(1).Info("exception", "err", err.Error())
	c.exceptions.emit(err)
}
