package player

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for a Player. A nil *Metrics records nothing.
type Metrics struct {
	linesRead        prometheus.Counter
	deltasEmitted    prometheus.Counter
	deltasSuppressed prometheus.Counter
	decodeErrors     prometheus.Counter
	filesCompleted   prometheus.Counter
	statusesDropped  prometheus.Counter
	rate             prometheus.Gauge
	cursor           prometheus.Gauge
}

// NewMetrics creates the player metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		linesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "lines_read_total",
			Help:      "Lines read from log files",
		}),
		deltasEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "deltas_emitted_total",
			Help:      "Deltas published to the consumer",
		}),
		deltasSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "deltas_suppressed_total",
			Help:      "Deltas discarded because playback was stopped",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "decode_errors_total",
			Help:      "Lines skipped because they are not JSON objects",
		}),
		filesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "files_completed_total",
			Help:      "Log files read to the end",
		}),
		statusesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logplay",
			Name:      "statuses_dropped_total",
			Help:      "Statuses discarded because the status channel was not read",
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logplay",
			Name:      "rate_hz",
			Help:      "Instantaneous emission rate",
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logplay",
			Name:      "file_cursor",
			Help:      "Index of the file being replayed",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.linesRead, m.deltasEmitted, m.deltasSuppressed, m.decodeErrors,
		m.filesCompleted, m.statusesDropped, m.rate, m.cursor,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering player metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) lineRead() {
	if m != nil {
		m.linesRead.Inc()
	}
}

func (m *Metrics) emitted(rate float64) {
	if m != nil {
		m.deltasEmitted.Inc()
		m.rate.Set(rate)
	}
}

func (m *Metrics) suppressed() {
	if m != nil {
		m.deltasSuppressed.Inc()
	}
}

func (m *Metrics) decodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *Metrics) fileCompleted() {
	if m != nil {
		m.filesCompleted.Inc()
	}
}

func (m *Metrics) statusDropped() {
	if m != nil {
		m.statusesDropped.Inc()
	}
}

func (m *Metrics) setCursor(i int) {
	if m != nil {
		m.cursor.Set(float64(i))
	}
}
