package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/davidbz/ghostline/internal/domain"
)

const (
	namespace = "ghostline"
	subsystem = "suggestion"

	// maxLineBucket groups longer suggestions under one label value.
	maxLineBucket = 10
)

// PrometheusSink counts resolved suggestions and observes how long they
// stayed on screen.
type PrometheusSink struct {
	resolved *prometheus.CounterVec
	lifespan *prometheus.HistogramVec
}

// NewPrometheusSink registers the sink's collectors with reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	factory := promauto.With(reg)

	return &PrometheusSink{
		resolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolved_total",
				Help:      "Displayed suggestions by outcome.",
			},
			[]string{"language", "action", "num_lines"},
		),
		lifespan: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lifespan_seconds",
				Help:      "Time between display and resolution of a suggestion.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"action"},
		),
	}
}

// Record implements domain.TelemetrySink.
func (s *PrometheusSink) Record(_ context.Context, record domain.TelemetryRecord) {
	s.resolved.WithLabelValues(record.Language, string(record.Action), lineBucket(record.NumLines)).Inc()
	s.lifespan.WithLabelValues(string(record.Action)).Observe(float64(record.ElapsedMs) / 1000)
}

func lineBucket(numLines int) string {
	if numLines >= maxLineBucket {
		return strconv.Itoa(maxLineBucket) + "+"
	}
	return strconv.Itoa(numLines)
}
