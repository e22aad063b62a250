package session

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
	"github.com/sioclient/go-socket.io-client/logger"
)

const (
	// Protocol3 has the client send pings and the server answer pongs.
	Protocol3 = 3
	// Protocol4 has the server send pings and the client answer pongs.
	Protocol4 = 4
)

// Options configures a Session.
type Options struct {
	// Path is the engine.io path, transport.DefaultPath when empty.
	Path   string
	Header http.Header

	// ProtocolVersion is Protocol3 when zero.
	ProtocolVersion int

	// ConnectTimeout bounds Open on top of its context. Zero means no
	// additional bound.
	ConnectTimeout time.Duration

	// UpgradeTransport is probed after the handshake when the server
	// announces it as an upgrade.
	UpgradeTransport transport.Dialer

	Logger logr.Logger
}

func (o *Options) version() int {
	if o.ProtocolVersion == Protocol4 {
		return Protocol4
	}
	return Protocol3
}

func (o *Options) logger() logr.Logger {
	if o.Logger.IsZero() {
		return logger.GetLogger("session")
	}
	return o.Logger.WithName("session")
}

// Handlers receives session notifications. Every field is optional.
// Except OnPacketOut and OnUpgrade, handlers run on the read goroutine one
// at a time in packet arrival order. A handler closing the session passes
// HandlerContext to Close.
type Handlers struct {
	OnOpen    func(transport.ConnParameters)
	OnMessage func(data string)
	// OnError reports dropped frames. The session stays open.
	OnError func(err error)
	// OnUpgrade runs on the upgrade goroutine after the switch.
	OnUpgrade func(name string)
	// OnClose runs exactly once, after every other notification.
	OnClose func(CloseEvent)

	OnPacketIn func(packet.Packet)
	// OnPacketOut runs on the write goroutine after a frame is written.
	OnPacketOut func(packet.Packet)
}
