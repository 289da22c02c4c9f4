package domain

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/davidbz/ghostline/internal/observability"
)

const (
	// DefaultRejectionWindow is how long a displayed suggestion may wait for
	// acceptance before it counts as rejected.
	DefaultRejectionWindow = 10 * time.Second

	// DefaultContinuationWindow is the display gap under which a new
	// suggestion is treated as a refinement of the previous one.
	DefaultContinuationWindow = 500 * time.Millisecond
)

type pendingOutcome struct {
	outcome     Outcome
	timer       clockwork.Timer
	displayedAt time.Time
}

type displayedRef struct {
	completionID string
	displayedAt  time.Time
}

// OutcomeLogger tracks in-flight requests and displayed suggestions, and
// classifies every displayed suggestion as accepted or rejected exactly once.
type OutcomeLogger struct {
	clock              clockwork.Clock
	sink               TelemetrySink
	rejectionWindow    time.Duration
	continuationWindow time.Duration

	mu            sync.Mutex
	inFlight      map[string]*CancellationToken
	pending       map[string]*pendingOutcome
	lastDisplayed *displayedRef
	lastCompleted *CompletedOutcome
}

// NewOutcomeLogger creates a logger. Zero windows fall back to the defaults;
// a nil sink discards records.
func NewOutcomeLogger(
	clock clockwork.Clock,
	sink TelemetrySink,
	rejectionWindow time.Duration,
	continuationWindow time.Duration,
) *OutcomeLogger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rejectionWindow <= 0 {
		rejectionWindow = DefaultRejectionWindow
	}
	if continuationWindow <= 0 {
		continuationWindow = DefaultContinuationWindow
	}

	return &OutcomeLogger{
		clock:              clock,
		sink:               sink,
		rejectionWindow:    rejectionWindow,
		continuationWindow: continuationWindow,
		mu:                 sync.Mutex{},
		inFlight:           make(map[string]*CancellationToken),
		pending:            make(map[string]*pendingOutcome),
	}
}

// Track registers the cancellation token of an in-flight request.
func (l *OutcomeLogger) Track(completionID string, token *CancellationToken) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight[completionID] = token
}

// Untrack removes the in-flight bookkeeping for completionID if token is
// still the registered one.
func (l *OutcomeLogger) Untrack(completionID string, token *CancellationToken) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[completionID] == token {
		delete(l.inFlight, completionID)
	}
}

// CancelInFlight aborts every request that has not been displayed yet.
// Displayed suggestions are left alone.
func (l *OutcomeLogger) CancelInFlight() {
	l.mu.Lock()
	tokens := make([]*CancellationToken, 0, len(l.inFlight))
	for id, token := range l.inFlight {
		tokens = append(tokens, token)
		delete(l.inFlight, id)
	}
	l.mu.Unlock()

	for _, token := range tokens {
		token.Cancel()
	}
}

// MarkDisplayed records that outcome is on screen and starts its rejection
// timer. A still-pending previous suggestion is discarded silently when the
// new one looks like a continuation of it.
func (l *OutcomeLogger) MarkDisplayed(completionID string, outcome Outcome) {
	now := l.clock.Now()
	entry := &pendingOutcome{outcome: outcome, displayedAt: now}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.pending[completionID]; ok {
		existing.timer.Stop()
	}
	entry.timer = l.clock.AfterFunc(l.rejectionWindow, func() {
		l.reject(completionID, entry)
	})
	l.pending[completionID] = entry

	if prev := l.lastDisplayed; prev != nil && prev.completionID != completionID {
		if previous, ok := l.pending[prev.completionID]; ok &&
			l.isContinuation(previous.outcome, outcome, now.Sub(prev.displayedAt)) {
			previous.timer.Stop()
			delete(l.pending, prev.completionID)
		}
	}

	l.lastDisplayed = &displayedRef{completionID: completionID, displayedAt: now}
}

// isContinuation treats either condition as sufficient on its own.
func (l *OutcomeLogger) isContinuation(previous, next Outcome, gap time.Duration) bool {
	prevLine := firstLine(previous.Completion)
	nextLine := firstLine(next.Completion)
	if strings.HasPrefix(nextLine, prevLine) || strings.HasPrefix(prevLine, nextLine) {
		return true
	}
	return gap < l.continuationWindow
}

// Accept resolves completionID as accepted. It returns false when there is
// nothing pending for it (already rejected, superseded or unknown).
func (l *OutcomeLogger) Accept(completionID string) (*Outcome, bool) {
	l.mu.Lock()
	entry, ok := l.pending[completionID]
	if !ok {
		l.mu.Unlock()
		return nil, false
	}
	entry.timer.Stop()
	delete(l.pending, completionID)
	record := l.completeLocked(entry, ActionAccepted)
	l.mu.Unlock()

	l.emit(completionID, record)

	outcome := entry.outcome
	return &outcome, true
}

func (l *OutcomeLogger) reject(completionID string, entry *pendingOutcome) {
	l.mu.Lock()
	if l.pending[completionID] != entry {
		// Accepted, replaced or discarded before the timer ran.
		l.mu.Unlock()
		return
	}
	delete(l.pending, completionID)
	record := l.completeLocked(entry, ActionRejected)
	l.mu.Unlock()

	l.emit(completionID, record)
}

func (l *OutcomeLogger) completeLocked(entry *pendingOutcome, action Action) TelemetryRecord {
	now := l.clock.Now()
	l.lastCompleted = &CompletedOutcome{
		Outcome:     entry.outcome,
		Action:      action,
		CompletedAt: now,
	}

	return TelemetryRecord{
		Language:  entry.outcome.Language,
		NumLines:  entry.outcome.NumLines,
		Action:    action,
		ElapsedMs: now.Sub(entry.displayedAt).Milliseconds(),
	}
}

func (l *OutcomeLogger) emit(completionID string, record TelemetryRecord) {
	ctx := observability.WithCompletionID(context.Background(), completionID)
	observability.FromContext(ctx).Debug("suggestion resolved",
		observability.String("action", string(record.Action)),
		observability.Int("num_lines", record.NumLines),
		observability.Int64("elapsed_ms", record.ElapsedMs))

	if l.sink != nil {
		l.sink.Record(ctx, record)
	}
}

// LastCompleted returns the most recent accepted or rejected suggestion.
func (l *OutcomeLogger) LastCompleted() (CompletedOutcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastCompleted == nil {
		return CompletedOutcome{}, false
	}
	return *l.lastCompleted, true
}

// PendingCount returns the number of displayed, unresolved suggestions.
func (l *OutcomeLogger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// InFlightCount returns the number of tracked, undisplayed requests.
func (l *OutcomeLogger) InFlightCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inFlight)
}

// Close stops every rejection timer without emitting telemetry and cancels
// all in-flight requests.
func (l *OutcomeLogger) Close() {
	l.mu.Lock()
	for id, entry := range l.pending {
		entry.timer.Stop()
		delete(l.pending, id)
	}
	l.mu.Unlock()

	l.CancelInFlight()
}
