package telemetry

import (
	"context"

	"github.com/davidbz/ghostline/internal/domain"
)

// Fanout forwards every record to each sink in order.
type Fanout []domain.TelemetrySink

// NewFanout drops nil sinks.
func NewFanout(sinks ...domain.TelemetrySink) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

// Record implements domain.TelemetrySink.
func (f Fanout) Record(ctx context.Context, record domain.TelemetryRecord) {
	for _, sink := range f {
		sink.Record(ctx, record)
	}
}
