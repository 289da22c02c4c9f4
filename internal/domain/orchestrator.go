package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/davidbz/ghostline/internal/observability"
)

const (
	// DefaultDebounceDelay is how long input must settle before fetching.
	DefaultDebounceDelay = 300 * time.Millisecond

	// DefaultNetworkTimeout bounds a single fetch.
	DefaultNetworkTimeout = 2 * time.Second
)

// OrchestratorConfig holds the tunables of a completion session.
type OrchestratorConfig struct {
	DebounceDelay      time.Duration
	RejectionWindow    time.Duration
	ContinuationWindow time.Duration
	HistoryCapacity    int
	NetworkTimeout     time.Duration

	Model              string
	Temperature        float64
	ClientID           string
	CalculateHideScore bool
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithErrorReporter installs the callback that receives fetch failures.
func WithErrorReporter(reporter ErrorReporter) Option {
	return func(o *Orchestrator) {
		o.reportError = reporter
	}
}

// Orchestrator sequences debounce, history lookup, fetch and outcome
// assembly for one editor session.
type Orchestrator struct {
	cfg         OrchestratorConfig
	provider    Provider
	clock       clockwork.Clock
	reportError ErrorReporter

	debouncer *Debouncer
	history   *SuggestionHistory
	outcomes  *OutcomeLogger
}

// NewOrchestrator creates a session bound to provider. Zero durations and
// capacities fall back to the package defaults.
func NewOrchestrator(
	cfg OrchestratorConfig,
	provider Provider,
	sink TelemetrySink,
	opts ...Option,
) *Orchestrator {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = DefaultNetworkTimeout
	}

	o := &Orchestrator{
		cfg:         cfg,
		provider:    provider,
		clock:       clockwork.NewRealClock(),
		reportError: func(error) {},
	}
	for _, opt := range opts {
		opt(o)
	}

	o.debouncer = NewDebouncer(o.clock)
	o.history = NewSuggestionHistory(cfg.HistoryCapacity)
	o.outcomes = NewOutcomeLogger(o.clock, sink, cfg.RejectionWindow, cfg.ContinuationWindow)

	return o
}

// Complete produces at most one suggestion for req. A nil outcome with a nil
// error means "no suggestion this time": cancelled, superseded, failed or
// unmatched. ctx is the editor's cancellation signal for this opportunity.
func (o *Orchestrator) Complete(ctx context.Context, req *CompletionRequest) (*Outcome, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	ctx = observability.WithCompletionID(ctx, req.CompletionID)
	ctx = observability.WithLanguage(ctx, req.LanguageID)
	logger := observability.FromContext(ctx)

	o.outcomes.CancelInFlight()

	token := NewCancellationToken(ctx)
	o.outcomes.Track(req.CompletionID, token)
	defer func() {
		o.outcomes.Untrack(req.CompletionID, token)
		token.Cancel()
	}()

	if token.IsCancelled() {
		return nil, nil
	}
	if o.debouncer.WaitOrSkip(token, o.cfg.DebounceDelay) {
		logger.Debug("completion skipped by debounce")
		return nil, nil
	}
	if token.IsCancelled() {
		return nil, nil
	}
	start := o.clock.Now()

	prefix := req.PromptOptions.Prefix
	suffix := req.PromptOptions.Suffix

	match, cacheHit := o.history.Find(prefix, suffix)
	if !cacheHit {
		fetched, ok := o.fetch(token, req)
		if !ok {
			return nil, nil
		}

		o.history.Insert(Suggestion{
			Text:         fetched.Text,
			Prefix:       prefix,
			Suffix:       suffix,
			CompletionID: fetched.ID,
		})

		match, ok = o.history.Find(prefix, suffix)
		if !ok {
			logger.Debug("fetched suggestion no longer matches the buffer")
			return nil, nil
		}
	}

	if token.IsCancelled() {
		return nil, nil
	}

	outcome := &Outcome{
		ElapsedMs:    o.clock.Since(start).Milliseconds(),
		Completion:   match.Text,
		CompletionID: match.CompletionID,
		CacheHit:     cacheHit,
		Filepath:     req.Filepath,
		NumLines:     CountLines(match.Text),
		Language:     req.LanguageID,
	}

	logger.Debug("completion ready",
		observability.Bool("cache_hit", outcome.CacheHit),
		observability.Int("num_lines", outcome.NumLines),
		observability.Int64("elapsed_ms", outcome.ElapsedMs))

	return outcome, nil
}

// fetch calls the provider under the request token and a network timeout.
// It reports false when the request was cancelled or the fetch failed.
func (o *Orchestrator) fetch(token *CancellationToken, req *CompletionRequest) (*FetchResult, bool) {
	ctx := token.Context()
	logger := observability.FromContext(ctx)

	if token.IsCancelled() {
		return nil, false
	}

	parentID := req.PreviousCompletionID
	if last, ok := o.outcomes.LastCompleted(); ok {
		if parentID == "" {
			parentID = last.Outcome.CompletionID
		}
		logger.Debug("previous suggestion resolved",
			observability.String("previous_completion_id", last.Outcome.CompletionID),
			observability.Bool("previous_accepted", last.Action == ActionAccepted))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.NetworkTimeout)
	defer cancel()

	result, err := o.provider.Complete(fetchCtx, &FetchRequest{
		Model:              o.cfg.Model,
		Temperature:        o.cfg.Temperature,
		ClientID:           o.cfg.ClientID,
		CompletionID:       req.CompletionID,
		LanguageID:         req.LanguageID,
		CalculateHideScore: o.cfg.CalculateHideScore,
		PromptOptions:      req.PromptOptions,
		ParentID:           parentID,
	})

	// A superseded request must not touch shared state, whatever it got back.
	if token.IsCancelled() {
		return nil, false
	}

	if err != nil {
		logger.Warn("completion fetch failed", observability.Error(err))
		o.reportError(fmt.Errorf("completion fetch failed: %w", err))
		return nil, false
	}

	if result == nil || result.Text == "" {
		return nil, false
	}
	if result.ID == "" {
		result.ID = req.CompletionID
	}

	return result, true
}

// MarkDisplayed tells the session that outcome is now shown to the user.
func (o *Orchestrator) MarkDisplayed(outcome *Outcome) {
	if outcome == nil {
		return
	}
	o.outcomes.MarkDisplayed(outcome.CompletionID, *outcome)
}

// Accept records that the user took the suggestion identified by completionID.
func (o *Orchestrator) Accept(completionID string) (*Outcome, bool) {
	return o.outcomes.Accept(completionID)
}

// Cancel aborts every in-flight request of this session.
func (o *Orchestrator) Cancel() {
	o.outcomes.CancelInFlight()
}

// History exposes the session's suggestion history.
func (o *Orchestrator) History() *SuggestionHistory {
	return o.history
}

// Outcomes exposes the session's outcome logger.
func (o *Orchestrator) Outcomes() *OutcomeLogger {
	return o.outcomes
}

// Close releases every timer and in-flight request of the session.
func (o *Orchestrator) Close() {
	o.outcomes.Close()
}
