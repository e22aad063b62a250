package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
)

func (s *Session) startHeartbeat(params transport.ConnParameters) {
	s.wg.Add(1)
	if s.opts.version() == Protocol4 {
		go s.watchPings(params)
		return
	}
	go s.sendPings(params)
}

// sendPings sends a ping every PingInterval and closes the session when
// the pong does not arrive within PingTimeout.
func (s *Session) sendPings(params transport.ConnParameters) {
	defer s.wg.Done()

	ticker := time.NewTicker(params.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		// A late pong of the previous round must not satisfy this one.
		select {
		case <-s.pongCh:
		default:
		}

		if err := s.enqueue(context.Background(), packet.Packet{Type: packet.PING}); err != nil {
			return
		}

		timer := time.NewTimer(params.PingTimeout)
		select {
		case <-s.pongCh:
			timer.Stop()
		case <-timer.C:
			s.shutdown(Timeout, 0, fmt.Errorf("%w: no pong within %s", ErrTimeout, params.PingTimeout))
			return
		case <-s.done:
			timer.Stop()
			return
		}
	}
}

// watchPings closes the session when the server stays silent longer than
// PingInterval+PingTimeout.
func (s *Session) watchPings(params transport.ConnParameters) {
	defer s.wg.Done()

	wait := params.PingInterval + params.PingTimeout
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.pingCh:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(wait)
		case <-timer.C:
			s.shutdown(Timeout, 0, fmt.Errorf("%w: no ping within %s", ErrTimeout, wait))
			return
		}
	}
}
