// Package redis publishes telemetry records to a Redis stream.
package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

const (
	defaultBufferSize   = 256
	defaultMaxLen       = 10000
	defaultWriteTimeout = time.Second
)

// StreamAdder is the subset of the Redis client used by the sink.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type entry struct {
	record  domain.TelemetryRecord
	traceID string
}

// StreamSink appends each record to a capped Redis stream from a single
// background worker. Record never blocks: when the buffer is full the
// record is dropped and logged.
type StreamSink struct {
	client StreamAdder
	stream string
	maxLen int64

	mu     sync.RWMutex
	closed bool
	queue  chan entry
	done   chan struct{}
}

// NewStreamSink starts the worker. Close must be called to stop it.
func NewStreamSink(client StreamAdder, stream string, bufferSize int) *StreamSink {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	s := &StreamSink{
		client: client,
		stream: stream,
		maxLen: defaultMaxLen,
		queue:  make(chan entry, bufferSize),
		done:   make(chan struct{}),
	}

	go s.run()

	return s
}

// Record implements domain.TelemetrySink.
func (s *StreamSink) Record(ctx context.Context, record domain.TelemetryRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.queue <- entry{record: record, traceID: observability.GetTraceID(ctx)}:
	default:
		observability.FromContext(ctx).Warn("telemetry stream buffer full, record dropped",
			observability.String("stream", s.stream))
	}
}

// Close drains buffered records and stops the worker.
func (s *StreamSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
}

func (s *StreamSink) run() {
	defer close(s.done)

	for e := range s.queue {
		s.publish(e)
	}
}

func (s *StreamSink) publish(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	if e.traceID != "" {
		ctx = observability.WithTraceID(ctx, e.traceID)
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: encode(e.record),
	}).Err()
	if err != nil {
		observability.FromContext(ctx).Error("failed to publish telemetry record",
			observability.String("stream", s.stream),
			observability.Error(err))
	}
}

func encode(record domain.TelemetryRecord) map[string]interface{} {
	return map[string]interface{}{
		"language":   record.Language,
		"num_lines":  strconv.Itoa(record.NumLines),
		"action":     string(record.Action),
		"elapsed_ms": strconv.FormatInt(record.ElapsedMs, 10),
	}
}
