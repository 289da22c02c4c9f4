package domain

import "time"

// Snippet is a piece of workspace context sent alongside the prompt.
type Snippet struct {
	Filepath string  `json:"filepath"`
	Contents string  `json:"contents"`
	Score    float64 `json:"score,omitempty"`
}

// PromptOptions carries the text around the cursor.
type PromptOptions struct {
	Prefix   string    `json:"prefix"`
	Suffix   string    `json:"suffix"`
	Snippets []Snippet `json:"snippets,omitempty"`
}

// CompletionRequest is one completion opportunity reported by the editor.
type CompletionRequest struct {
	CompletionID         string        `json:"completion_id"`
	LanguageID           string        `json:"language_id"`
	PromptOptions        PromptOptions `json:"prompt_options"`
	PreviousCompletionID string        `json:"previous_completion_id,omitempty"`
	Filepath             string        `json:"filepath"`
}

// Suggestion is a fetched completion: with the buffer at Prefix|Suffix,
// Text was insertable at the cursor.
type Suggestion struct {
	Text         string `json:"text"`
	Prefix       string `json:"prefix"`
	Suffix       string `json:"suffix"`
	CompletionID string `json:"completion_id"`
}

// Match is the result of a history lookup.
type Match struct {
	Text         string
	CompletionID string
}

// Outcome describes a suggestion produced for the editor.
type Outcome struct {
	ElapsedMs    int64  `json:"time"`
	Completion   string `json:"completion"`
	CompletionID string `json:"completion_id"`
	CacheHit     bool   `json:"cache_hit"`
	Filepath     string `json:"filepath"`
	NumLines     int    `json:"num_lines"`
	Language     string `json:"language"`
}

// Action is the terminal classification of a displayed suggestion.
type Action string

const (
	ActionAccepted Action = "accepted"
	ActionRejected Action = "rejected"
)

// TelemetryRecord is emitted once per resolved suggestion.
type TelemetryRecord struct {
	Language  string `json:"language"`
	NumLines  int    `json:"num_lines"`
	Action    Action `json:"action"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// CompletedOutcome is the most recent terminal result.
type CompletedOutcome struct {
	Outcome     Outcome
	Action      Action
	CompletedAt time.Time
}

// FetchRequest is the body of POST /completions.
type FetchRequest struct {
	Model              string        `json:"model"`
	Temperature        float64       `json:"temperature"`
	ClientID           string        `json:"client_id"`
	CompletionID       string        `json:"completion_id"`
	LanguageID         string        `json:"language_id"`
	CalculateHideScore bool          `json:"calculate_hide_score"`
	PromptOptions      PromptOptions `json:"prompt_options"`
	ParentID           string        `json:"parent_id,omitempty"`
}

// FetchResult is what a provider extracted from the completion service.
// ID becomes the completion id of the new suggestion.
type FetchResult struct {
	ID   string
	Text string
}
