package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

// cacheHeader reports whether the suggestion came from the session history.
const cacheHeader = "X-Ghostline-Cache"

// Handler handles HTTP requests.
type Handler struct {
	orchestrator *domain.Orchestrator
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(orchestrator *domain.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
	}
}

// HandleCompletion runs one completion opportunity. The request context is
// the cancellation signal: a client that disconnects cancels its request,
// and a newer request supersedes it.
func (h *Handler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.CompletionID == "" {
		req.CompletionID = uuid.NewString()
	}

	ctx = observability.WithCompletionID(ctx, req.CompletionID)
	ctx = observability.WithLanguage(ctx, req.LanguageID)

	logger := observability.FromContext(ctx)
	logger.Info("completion request received",
		observability.Int("prefix_len", len(req.PromptOptions.Prefix)),
		observability.Int("suffix_len", len(req.PromptOptions.Suffix)),
		observability.Int("snippets", len(req.PromptOptions.Snippets)))

	outcome, err := h.orchestrator.Complete(ctx, &req)
	if err != nil {
		logger.Error("completion failed", observability.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if outcome == nil {
		logger.Info("no suggestion")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.orchestrator.MarkDisplayed(outcome)

	logger.Info("suggestion returned",
		observability.String("suggestion_id", outcome.CompletionID),
		observability.Bool("cache_hit", outcome.CacheHit),
		observability.Int("num_lines", outcome.NumLines))

	setCacheHeader(w, outcome.CacheHit)
	writeJSON(w, http.StatusOK, outcome)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(cacheHeader, "HIT")
		return
	}
	w.Header().Set(cacheHeader, "MISS")
}

// HandleAccept records that the user accepted a displayed suggestion.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := observability.WithCompletionID(r.Context(), id)

	outcome, ok := h.orchestrator.Accept(id)
	if !ok {
		observability.FromContext(ctx).Info("accept for unknown suggestion")
		writeError(w, http.StatusNotFound, "suggestion not pending")
		return
	}

	observability.FromContext(ctx).Info("suggestion accepted")
	writeJSON(w, http.StatusOK, outcome)
}

// HandleCancel aborts every in-flight completion request.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Cancel()
	observability.FromContext(r.Context()).Info("in-flight completions cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
