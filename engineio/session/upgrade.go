package session

import (
	"context"
	"fmt"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

const probeData = "probe"

// upgrade probes alt and switches to it when the server answers. On any
// failure the session stays on the current transport.
func (s *Session) upgrade(alt transport.Dialer, params transport.ConnParameters) {
	defer s.wg.Done()

	if !s.transition(Open, Upgrading) {
		return
	}
	defer s.transition(Upgrading, Open)

	ctx, cancel := context.WithTimeout(context.Background(), params.PingTimeout)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	log := s.log.WithValues("transport", alt.Name())

	u, err := transport.BuildURL(s.url, s.opts.Path, s.opts.version(), alt.Name(), params.SID)
	if err != nil {
		log.Error(err, "upgrade url")
		return
	}

	conn, err := alt.Dial(ctx, u, s.opts.Header)
	if err != nil {
		log.Error(err, "upgrade dial")
		return
	}

	if err := probe(ctx, conn); err != nil {
		_ = conn.Close()
		log.Error(err, "upgrade probe")
		return
	}

	// shutdown closes whichever connection is active once done is closed,
	// so done is checked under the lock that guards the switch.
	s.upgradeLocker.Lock()
	select {
	case <-s.done:
		s.upgradeLocker.Unlock()
		_ = conn.Close()
		return
	default:
	}
	old := s.conn
	s.conn = conn
	s.transport = alt.Name()
	s.upgradeLocker.Unlock()

	_ = old.Close()

	select {
	case <-s.done:
		return
	default:
	}
	s.transition(Upgrading, Open)

	log.Info("upgraded")
	if s.h.OnUpgrade != nil {
		s.h.OnUpgrade(alt.Name())
	}
}

func probe(ctx context.Context, conn transport.Conn) error {
	if err := conn.WriteMessage(packet.Encode(packet.Packet{Type: packet.PING, Data: probeData})); err != nil {
		return err
	}

	type result struct {
		msg string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := conn.ReadMessage()
		ch <- result{msg, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		p, err := packet.Decode(r.msg)
		if err != nil {
			return err
		}
		if p.Type != packet.PONG || p.Data != probeData {
			return fmt.Errorf("%w: unexpected %s", errProbeFailed, p)
		}
	case <-ctx.Done():
		// unblocks the reader
		_ = conn.Close()
		return fmt.Errorf("%w: %w", errProbeFailed, ctx.Err())
	}

	return conn.WriteMessage(packet.Encode(packet.Packet{Type: packet.UPGRADE}))
}
