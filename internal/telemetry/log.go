// Package telemetry provides domain.TelemetrySink implementations that feed
// accept/reject records into the metrics pipeline.
package telemetry

import (
	"context"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

const eventSuggestionResolved = "suggestion_resolved"

// LogSink writes each record as a structured log event.
type LogSink struct{}

// NewLogSink creates a new log sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Record logs the record with the request fields carried by ctx.
func (s *LogSink) Record(ctx context.Context, record domain.TelemetryRecord) {
	observability.FromContext(ctx).Info(eventSuggestionResolved,
		observability.String("action", string(record.Action)),
		observability.String("record_language", record.Language),
		observability.Int("num_lines", record.NumLines),
		observability.Int64("elapsed_ms", record.ElapsedMs))
}
