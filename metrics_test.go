package socketio

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	should := assert.New(t)
	must := require.New(t)

	reg := prometheus.NewRegistry()
	c, d := newTestClient(t, &Options{Registerer: reg})
	n := record(c)
	must.NoError(c.On("handled", func() {}))

	peer := connect(t, c, d)
	n.expect(t, "connected /")

	peer.Message(t, `2["handled"]`)
	peer.Message(t, `2["other"]`)
	n.expect(t, "received handled", "handled handled", "received other", "unhandled other")

	must.NoError(c.Disconnect(context.Background()))
	n.expect(t, `disconnected "" client requested`)

	m := c.metrics
	should.Equal(float64(1), testutil.ToFloat64(m.events.WithLabelValues("/", "handled")))
	should.Equal(float64(1), testutil.ToFloat64(m.events.WithLabelValues("/", "unhandled")))
	should.Equal(float64(1), testutil.ToFloat64(m.frames.WithLabelValues("in", "open")))
	should.Equal(float64(3), testutil.ToFloat64(m.frames.WithLabelValues("in", "message")))
	should.Equal(float64(1), testutil.ToFloat64(m.disconnects.WithLabelValues("client requested")))

	families, err := reg.Gather()
	must.NoError(err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	should.Contains(names, "sioclient_events_total")
	should.Contains(names, "sioclient_frames_total")
	should.Contains(names, "sioclient_pending_acks")
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		NewClient(&Options{Registerer: reg})
		NewClient(&Options{Registerer: reg})
	})
}
