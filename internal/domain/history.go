package domain

import (
	"strings"
	"sync"
)

// DefaultHistoryCapacity is the number of suggestions kept per session.
const DefaultHistoryCapacity = 20

// SuggestionHistory is a bounded, insertion-ordered list of fetched
// suggestions. It lives as long as the orchestrator that owns it.
type SuggestionHistory struct {
	mu          sync.RWMutex
	capacity    int
	suggestions []Suggestion
}

// NewSuggestionHistory creates an empty history. A non-positive capacity
// falls back to DefaultHistoryCapacity.
func NewSuggestionHistory(capacity int) *SuggestionHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &SuggestionHistory{
		mu:          sync.RWMutex{},
		capacity:    capacity,
		suggestions: make([]Suggestion, 0, capacity+1),
	}
}

// Find looks for a suggestion that still applies to the buffer prefix|suffix.
// Newer entries win. A candidate matches exactly when both prefix and suffix
// are equal, or partially when the user has typed further and every typed
// character agrees with the start of the candidate's text; the untyped tail
// is returned in that case.
func (h *SuggestionHistory) Find(prefix, suffix string) (Match, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.suggestions) - 1; i >= 0; i-- {
		candidate := h.suggestions[i]
		if candidate.Suffix != suffix {
			continue
		}

		if candidate.Prefix == prefix {
			return Match{Text: candidate.Text, CompletionID: candidate.CompletionID}, true
		}

		if !strings.HasPrefix(prefix, candidate.Prefix) {
			continue
		}

		typed := prefix[len(candidate.Prefix):]
		if !strings.HasPrefix(candidate.Text, typed) {
			continue
		}

		remaining := candidate.Text[len(typed):]
		if remaining == "" {
			// Fully typed out: nothing left to insert.
			continue
		}

		return Match{Text: remaining, CompletionID: candidate.CompletionID}, true
	}

	return Match{}, false
}

// Insert appends suggestion as the newest entry and evicts the oldest one
// when over capacity. It reports false for an exact duplicate.
func (h *SuggestionHistory) Insert(suggestion Suggestion) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.suggestions {
		if existing.Text == suggestion.Text &&
			existing.Prefix == suggestion.Prefix &&
			existing.Suffix == suggestion.Suffix {
			return false
		}
	}

	h.suggestions = append(h.suggestions, suggestion)
	if len(h.suggestions) > h.capacity {
		h.suggestions = h.suggestions[len(h.suggestions)-h.capacity:]
	}

	return true
}

// Len returns the number of stored suggestions.
func (h *SuggestionHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.suggestions)
}

// Snapshot returns a copy of the stored suggestions, oldest first.
func (h *SuggestionHistory) Snapshot() []Suggestion {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Suggestion, len(h.suggestions))
	copy(out, h.suggestions)
	return out
}
