package socketio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sioclient/go-socket.io-client/engineio/packet"
	"github.com/sioclient/go-socket.io-client/engineio/session"
)

const metricsNamespace = "sioclient"

// metrics holds the Prometheus metrics of one client.
type metrics struct {
	frames      *prometheus.CounterVec
	events      *prometheus.CounterVec
	acks        *prometheus.CounterVec
	disconnects *prometheus.CounterVec
	pendingAcks prometheus.Gauge
}

// newMetrics registers the metrics to reg, labelled with the client id so
// that several clients can share a registry. A nil reg keeps them
// unregistered.
func newMetrics(reg prometheus.Registerer, clientID string) *metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"client": clientID}

	return &metrics{
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "frames_total",
			Help:        "Total number of transport frames by direction and type",
			ConstLabels: labels,
		}, []string{"direction", "type"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "events_total",
			Help:        "Total number of received events by namespace and status",
			ConstLabels: labels,
		}, []string{"namespace", "status"}),

		acks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "acks_total",
			Help:        "Total number of settled acknowledgements by result",
			ConstLabels: labels,
		}, []string{"result"}),

		disconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "disconnects_total",
			Help:        "Total number of closed connections by reason",
			ConstLabels: labels,
		}, []string{"reason"}),

		pendingAcks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "pending_acks",
			Help:        "Number of acknowledgements awaited",
			ConstLabels: labels,
		}),
	}
}

func (m *metrics) frame(direction string, p packet.Packet) {
	m.frames.WithLabelValues(direction, p.Type.String()).Inc()
}

func (m *metrics) event(namespace string, handled bool) {
	status := "unhandled"
	if handled {
		status = "handled"
	}
	m.events.WithLabelValues(namespace, status).Inc()
}

func (m *metrics) ack(result string) {
	m.acks.WithLabelValues(result).Inc()
}

func (m *metrics) disconnect(reason session.Reason) {
	m.disconnects.WithLabelValues(reason.String()).Inc()
}
