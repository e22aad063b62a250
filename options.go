package socketio

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sioclient/go-socket.io-client/engineio/session"
	"github.com/sioclient/go-socket.io-client/engineio/transport"
	"github.com/sioclient/go-socket.io-client/engineio/transport/websocket"
	"github.com/sioclient/go-socket.io-client/logger"
)

const (
	defaultConnectTimeout = 20 * time.Second
	defaultAckTimeout     = 10 * time.Second
)

// Options is options to create a client. The zero value is usable.
type Options struct {
	// Path is the engine.io path, "/socket.io/" when empty.
	Path   string
	Header http.Header

	// ConnectTimeout bounds Connect and JoinNamespace, 20s when zero.
	ConnectTimeout time.Duration
	// AckTimeout is the deadline of acknowledgements, 10s when zero.
	AckTimeout time.Duration

	// ProtocolVersion is 3 or 4, 3 when zero.
	ProtocolVersion int

	// Transport dials the connection, websocket when nil.
	Transport transport.Dialer
	// UpgradeTransport is probed after the handshake when the server
	// announces it.
	UpgradeTransport transport.Dialer

	// EmitRate limits outbound events per second, unlimited when zero.
	EmitRate  float64
	EmitBurst int

	Retry BackOffOptions

	// Registerer receives the client metrics. Metrics are kept
	// unregistered when nil.
	Registerer prometheus.Registerer

	Logger *logr.Logger
}

func (o *Options) getPath() string {
	if o.Path == "" {
		return transport.DefaultPath
	}
	return o.Path
}

func (o *Options) getConnectTimeout() time.Duration {
	if o.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return o.ConnectTimeout
}

func (o *Options) getAckTimeout() time.Duration {
	if o.AckTimeout <= 0 {
		return defaultAckTimeout
	}
	return o.AckTimeout
}

func (o *Options) getProtocolVersion() int {
	if o.ProtocolVersion == session.Protocol4 {
		return session.Protocol4
	}
	return session.Protocol3
}

func (o *Options) getTransport() transport.Dialer {
	if o.Transport == nil {
		return websocket.Default
	}
	return o.Transport
}

func (o *Options) getEmitBurst() int {
	if o.EmitBurst <= 0 {
		return 1
	}
	return o.EmitBurst
}

func (o *Options) getLogger() logr.Logger {
	if o.Logger == nil {
		return logger.GetLogger("client")
	}
	return *o.Logger
}

func (o *Options) sessionOptions(log logr.Logger) session.Options {
	return session.Options{
		Path:             o.getPath(),
		Header:           o.Header,
		ProtocolVersion:  o.getProtocolVersion(),
		UpgradeTransport: o.UpgradeTransport,
		Logger:           log,
	}
}

type fileOptions struct {
	Path            string            `toml:"path"`
	Header          map[string]string `toml:"header"`
	ConnectTimeout  string            `toml:"connect_timeout"`
	AckTimeout      string            `toml:"ack_timeout"`
	ProtocolVersion int               `toml:"protocol_version"`
	EmitRate        float64           `toml:"emit_rate"`
	EmitBurst       int               `toml:"emit_burst"`

	Retry struct {
		Min         string  `toml:"min"`
		Max         string  `toml:"max"`
		Factor      float64 `toml:"factor"`
		Jitter      float64 `toml:"jitter"`
		MaxAttempts int     `toml:"max_attempts"`
	} `toml:"retry"`
}

// LoadOptions reads options from a TOML document. Durations are strings
// such as "5s". Transports, metrics and logger are left to the caller.
func LoadOptions(r io.Reader) (*Options, error) {
	var raw fileOptions
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load options: unknown key %q", undecoded[0].String())
	}

	opts := &Options{
		Path:            raw.Path,
		ProtocolVersion: raw.ProtocolVersion,
		EmitRate:        raw.EmitRate,
		EmitBurst:       raw.EmitBurst,
	}

	if raw.ProtocolVersion != 0 && raw.ProtocolVersion != session.Protocol3 && raw.ProtocolVersion != session.Protocol4 {
		return nil, fmt.Errorf("load options: unsupported protocol_version %d", raw.ProtocolVersion)
	}

	if len(raw.Header) > 0 {
		opts.Header = make(http.Header, len(raw.Header))
		for k, v := range raw.Header {
			opts.Header.Set(k, v)
		}
	}

	durations := []struct {
		key string
		raw string
		out *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &opts.ConnectTimeout},
		{"ack_timeout", raw.AckTimeout, &opts.AckTimeout},
		{"retry.min", raw.Retry.Min, &opts.Retry.Min},
		{"retry.max", raw.Retry.Max, &opts.Retry.Max},
	}
	for _, d := range durations {
		if !meta.IsDefined(strings.Split(d.key, ".")...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.out = v
	}

	opts.Retry.Factor = raw.Retry.Factor
	opts.Retry.Jitter = raw.Retry.Jitter
	opts.Retry.MaxAttempts = raw.Retry.MaxAttempts

	return opts, nil
}
