package agent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus metrics of an agent.
type Metrics struct {
	// CommandsTotal counts commands by message type and result (ok or the
	// error kind).
	CommandsTotal *prometheus.CounterVec

	// CommandDuration tracks how long commands take by message type.
	CommandDuration *prometheus.HistogramVec

	// TransfersTotal counts transfers paid out of custody by message type.
	TransfersTotal *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with the registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "option",
			Subsystem: "agent",
			Name:      "commands_total",
			Help:      "Total commands handled by type and result",
		}, []string{"type", "result"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "option",
			Subsystem: "agent",
			Name:      "command_duration_seconds",
			Help:      "Command duration in seconds, including settlement",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"type"}),
		TransfersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "option",
			Subsystem: "agent",
			Name:      "transfers_total",
			Help:      "Total transfers paid out of custody by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) observe(typ, result string, transfers int, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(typ, result).Inc()
	m.CommandDuration.WithLabelValues(typ).Observe(d.Seconds())
	if transfers > 0 {
		m.TransfersTotal.WithLabelValues(typ).Add(float64(transfers))
	}
}
