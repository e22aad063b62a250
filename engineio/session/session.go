package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

const sendQueueSize = 64

// Session is one engine.io connection. It is single use: once closed, a
// new Session has to be created to connect again.
type Session struct {
	dialer transport.Dialer
	opts   Options
	h      Handlers
	log    logr.Logger

	url string

	upgradeLocker sync.RWMutex
	conn          transport.Conn
	transport     string

	mu     sync.Mutex
	state  State
	params transport.ConnParameters
	event  CloseEvent

	started      atomic.Bool
	shutdownOnce sync.Once
	closedOnce   sync.Once
	wg           sync.WaitGroup

	handlerCtx context.Context

	opened chan struct{}
	done   chan struct{}
	closed chan struct{}

	sendCh chan packet.Packet
	pongCh chan struct{}
	pingCh chan struct{}
}

// New returns a Session in the Connecting state.
func New(dialer transport.Dialer, opts Options, h Handlers) *Session {
	s := &Session{
		dialer: dialer,
		opts:   opts,
		h:      h,
		log:    opts.logger(),
		state:  Connecting,
		opened: make(chan struct{}),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
		sendCh: make(chan packet.Packet, sendQueueSize),
		pongCh: make(chan struct{}, 1),
		pingCh: make(chan struct{}, 1),
	}
	s.handlerCtx = context.WithValue(context.Background(), handlerKey{}, s)
	return s
}

type handlerKey struct{}

// HandlerContext returns the context for code running in a handler. Close
// called with it, or with a context derived from it, returns without
// waiting for the close notification, which is delivered after the
// handler returns.
func (s *Session) HandlerContext() context.Context {
	return s.handlerCtx
}

// Open dials rawURL and blocks until the handshake completes, the session
// closes, or ctx is done. A cancelled Open releases the transport and
// returns an error wrapping ErrTimeout.
func (s *Session) Open(ctx context.Context, rawURL string) error {
	if !s.started.CompareAndSwap(false, true) {
		select {
		case <-s.done:
			return ErrClosed
		default:
			return ErrAlreadyStarted
		}
	}
	s.url = rawURL

	if s.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ConnectTimeout)
		defer cancel()
	}

	u, err := transport.BuildURL(rawURL, s.opts.Path, s.opts.version(), s.dialer.Name(), "")
	if err != nil {
		s.abort(Failed, TransportError)
		return err
	}

	s.log.V(1).Info("dialing", "url", u.String())

	// Close cancels the dial.
	dialCtx, cancelDial := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.done:
			cancelDial()
		case <-dialCtx.Done():
		}
	}()

	conn, err := s.dialer.Dial(dialCtx, u, s.opts.Header)
	cancelDial()
	if err != nil {
		s.abort(Failed, TransportError)
		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		case s.closeEvent().Reason == ClientRequested:
			return fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	s.upgradeLocker.Lock()
	s.conn = conn
	s.transport = s.dialer.Name()
	s.upgradeLocker.Unlock()

	// Closed while dialing.
	select {
	case <-s.done:
		_ = conn.Close()
	default:
	}

	s.wg.Add(1)
	go s.writeLoop()
	go s.readLoop(conn)

	select {
	case <-s.opened:
		return nil
	case <-s.closed:
		select {
		case <-s.opened:
			return nil
		default:
		}
		if err := s.closeEvent().Err; err != nil {
			return err
		}
		return ErrClosed
	case <-ctx.Done():
		s.shutdown(Timeout, 0, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err()))
		<-s.closed
		if err := s.closeEvent().Err; err != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrClosed, ctx.Err())
	}
}

// abort ends a session that never got a transport. No close notification
// is delivered. A Close that raced the dial keeps its reason.
func (s *Session) abort(state State, reason Reason) {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.event = CloseEvent{Reason: reason}
		s.mu.Unlock()

		close(s.done)
	})

	s.mu.Lock()
	if s.event.Reason == ClientRequested {
		state = Closed
	}
	s.state = state
	s.mu.Unlock()

	s.markClosed()
}

func (s *Session) markClosed() {
	s.closedOnce.Do(func() { close(s.closed) })
}

// Send queues data as a MESSAGE packet. Frames are written in the order
// Send is called.
func (s *Session) Send(ctx context.Context, data string) error {
	select {
	case <-s.opened:
	default:
		return ErrNotOpen
	}

	return s.enqueue(ctx, packet.Packet{Type: packet.MESSAGE, Data: data})
}

func (s *Session) enqueue(ctx context.Context, p packet.Packet) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.sendCh <- p:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close sends a close packet, releases the transport and blocks until the
// close notification was delivered or ctx is done. Pending sends are
// dropped. Close is idempotent. From a handler, pass HandlerContext.
func (s *Session) Close(ctx context.Context) error {
	if s.started.CompareAndSwap(false, true) {
		s.abort(Closed, ClientRequested)
		return nil
	}

	select {
	case <-s.done:
	default:
		if conn := s.activeConn(); conn != nil {
			_ = conn.WriteMessage(packet.Encode(packet.Packet{Type: packet.CLOSE}))
		}
		s.shutdown(ClientRequested, transport.StatusNormalClosure, nil)
	}

	// The read goroutine finishes after the calling handler returns.
	if ctx.Value(handlerKey{}) == s {
		return nil
	}

	select {
	case <-s.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed after the close notification was delivered.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Params returns the handshake parameters. They are zero before Open.
func (s *Session) Params() transport.ConnParameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.params
}

// ID returns the session id assigned by the server.
func (s *Session) ID() string {
	return s.Params().SID
}

// Transport returns the name of the active transport.
func (s *Session) Transport() string {
	s.upgradeLocker.RLock()
	defer s.upgradeLocker.RUnlock()

	return s.transport
}

func (s *Session) activeConn() transport.Conn {
	s.upgradeLocker.RLock()
	defer s.upgradeLocker.RUnlock()

	return s.conn
}

func (s *Session) closeEvent() CloseEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.event
}

func (s *Session) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// shutdown records the first close reason and releases the transport. The
// close notification is delivered by the read goroutine when it exits.
func (s *Session) shutdown(reason Reason, status int, err error) {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.state = Closing
		s.event = CloseEvent{Reason: reason, Status: status, Err: err}
		s.mu.Unlock()

		s.log.Info("closing", "reason", reason.String(), "status", status, "err", err)

		close(s.done)
		if conn := s.activeConn(); conn != nil {
			_ = conn.Close()
		}
	})
}

func (s *Session) finish() {
	s.shutdown(TransportError, 0, ErrTransport)
	s.wg.Wait()

	s.mu.Lock()
	ev := s.event
	if ev.Reason == TransportError {
		s.state = Failed
	} else {
		s.state = Closed
	}
	s.mu.Unlock()

	if s.h.OnClose != nil {
		s.h.OnClose(ev)
	}
	s.markClosed()
}

func (s *Session) readLoop(conn transport.Conn) {
	defer s.finish()

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if next := s.activeConn(); next != conn {
				conn = next
				continue
			}
			if errors.Is(err, transport.ErrInvalidFrame) {
				s.reportError(err)
				continue
			}
			s.onReadError(err)
			return
		}

		p, err := packet.Decode(msg)
		if err != nil {
			s.reportError(err)
			continue
		}

		s.log.V(1).Info("recv", "packet", p.String())
		if s.h.OnPacketIn != nil {
			s.h.OnPacketIn(p)
		}

		s.handle(p)
	}
}

func (s *Session) onReadError(err error) {
	var closeErr *transport.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Normal() {
			s.shutdown(ServerClosed, closeErr.Code, nil)
			return
		}
		s.shutdown(TransportError, closeErr.Code, fmt.Errorf("%w: %w", ErrTransport, err))
		return
	}
	s.shutdown(TransportError, 0, fmt.Errorf("%w: %w", ErrTransport, err))
}

func (s *Session) handle(p packet.Packet) {
	select {
	case <-s.opened:
	default:
		switch p.Type {
		case packet.OPEN:
			s.handshake(p.Data)
		case packet.NOOP:
		case packet.CLOSE:
			s.shutdown(ServerClosed, 0, nil)
		default:
			s.shutdown(TransportError, 0, fmt.Errorf("%w: %s before handshake", ErrProtocolViolation, p.Type))
		}
		return
	}

	switch p.Type {
	case packet.OPEN:
		s.shutdown(TransportError, 0, fmt.Errorf("%w: duplicate open", ErrProtocolViolation))

	case packet.CLOSE:
		s.shutdown(ServerClosed, 0, nil)

	case packet.PING:
		_ = s.enqueue(context.Background(), packet.Packet{Type: packet.PONG, Data: p.Data})
		notify(s.pingCh)

	case packet.PONG:
		notify(s.pongCh)

	case packet.MESSAGE:
		if s.h.OnMessage != nil {
			s.h.OnMessage(p.Data)
		}

	case packet.UPGRADE, packet.NOOP:
	}
}

func (s *Session) handshake(data string) {
	params, err := transport.ParseConnParameters(data)
	if err != nil {
		s.reportError(err)
		return
	}

	s.mu.Lock()
	s.params = params
	s.state = Open
	s.mu.Unlock()

	s.log.Info("opened", "sid", params.SID, "pingInterval", params.PingInterval,
		"pingTimeout", params.PingTimeout, "upgrades", params.Upgrades)

	s.startHeartbeat(params)
	close(s.opened)

	if s.h.OnOpen != nil {
		s.h.OnOpen(params)
	}

	if alt := s.opts.UpgradeTransport; alt != nil && alt.Name() != s.Transport() && params.CanUpgrade(alt.Name()) {
		s.wg.Add(1)
		go s.upgrade(alt, params)
	}
}

func (s *Session) reportError(err error) {
	s.log.Error(err, "frame dropped")
	if s.h.OnError != nil {
		s.h.OnError(err)
	}
}

func (s *Session) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case p := <-s.sendCh:
			s.upgradeLocker.RLock()
			err := s.conn.WriteMessage(packet.Encode(p))
			s.upgradeLocker.RUnlock()

			if err != nil {
				s.shutdown(TransportError, 0, fmt.Errorf("%w: %w", ErrTransport, err))
				return
			}

			s.log.V(1).Info("sent", "packet", p.String())
			if s.h.OnPacketOut != nil {
				s.h.OnPacketOut(p)
			}
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
