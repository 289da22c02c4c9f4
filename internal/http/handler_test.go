package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidbz/ghostline/internal/config"
	"github.com/davidbz/ghostline/internal/domain"
	ghttp "github.com/davidbz/ghostline/internal/http"
	"github.com/davidbz/ghostline/internal/http/middleware"
	"github.com/davidbz/ghostline/internal/mocks"
	"github.com/davidbz/ghostline/internal/observability"
	"github.com/davidbz/ghostline/internal/telemetry"
)

func TestMain(m *testing.M) {
	observability.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type testServer struct {
	routes   http.Handler
	provider *mocks.MockProvider
	sink     *mocks.MockTelemetrySink
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	provider := mocks.NewMockProvider(t)
	sink := mocks.NewMockTelemetrySink(t)
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusSink(registry)

	orch := domain.NewOrchestrator(domain.OrchestratorConfig{
		DebounceDelay:   time.Millisecond,
		RejectionWindow: time.Minute,
	}, provider, telemetry.NewFanout(sink, metrics))
	t.Cleanup(orch.Close)

	server := ghttp.NewServer(
		&config.ServerConfig{Port: 0},
		ghttp.NewHandler(orch),
		middleware.BuildMiddlewareChain(&config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}),
		registry,
	)

	return &testServer{
		routes:   server.Routes(),
		provider: provider,
		sink:     sink,
		registry: registry,
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.routes.ServeHTTP(w, req)

	return w
}

func completionRequest(id, prefix string) domain.CompletionRequest {
	return domain.CompletionRequest{
		CompletionID: id,
		LanguageID:   "go",
		PromptOptions: domain.PromptOptions{
			Prefix: prefix,
			Suffix: "\n}",
		},
		Filepath: "/src/main.go",
	}
}

func TestHandleCompletion(t *testing.T) {
	t.Run("should return the suggestion and mark it displayed", func(t *testing.T) {
		s := newTestServer(t)

		s.provider.EXPECT().
			Complete(mock.Anything, mock.Anything).
			Return(&domain.FetchResult{ID: "srv-1", Text: "return nil"}, nil).
			Once()

		w := s.do(http.MethodPost, "/v1/completions", completionRequest("cmpl-1", "func f() error {\n\t"))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.NotEmpty(t, w.Header().Get("X-Trace-Id"))
		require.Equal(t, "MISS", w.Header().Get("X-Ghostline-Cache"))

		var outcome domain.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		require.Equal(t, "return nil", outcome.Completion)
		require.Equal(t, "srv-1", outcome.CompletionID)
		require.False(t, outcome.CacheHit)
		require.Equal(t, 1, outcome.NumLines)
		require.Equal(t, "go", outcome.Language)
		require.Equal(t, "/src/main.go", outcome.Filepath)
	})

	t.Run("should serve a partially typed suggestion from history", func(t *testing.T) {
		s := newTestServer(t)

		s.provider.EXPECT().
			Complete(mock.Anything, mock.Anything).
			Return(&domain.FetchResult{ID: "srv-2", Text: "return nil"}, nil).
			Once()

		w := s.do(http.MethodPost, "/v1/completions", completionRequest("cmpl-1", "func f() error {\n\t"))
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodPost, "/v1/completions", completionRequest("cmpl-2", "func f() error {\n\tret"))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "HIT", w.Header().Get("X-Ghostline-Cache"))

		var outcome domain.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		require.Equal(t, "urn nil", outcome.Completion)
		require.Equal(t, "srv-2", outcome.CompletionID)
		require.True(t, outcome.CacheHit)
	})

	t.Run("should return no content when the provider fails", func(t *testing.T) {
		s := newTestServer(t)

		s.provider.EXPECT().
			Complete(mock.Anything, mock.Anything).
			Return(nil, errors.New("upstream unavailable")).
			Once()

		w := s.do(http.MethodPost, "/v1/completions", completionRequest("cmpl-1", "x := "))

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Empty(t, w.Body.Bytes())
	})

	t.Run("should assign a completion id when the editor sends none", func(t *testing.T) {
		s := newTestServer(t)

		var sentID string
		s.provider.EXPECT().
			Complete(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, req *domain.FetchRequest) (*domain.FetchResult, error) {
				sentID = req.CompletionID
				return &domain.FetchResult{Text: "42"}, nil
			}).
			Once()

		w := s.do(http.MethodPost, "/v1/completions", completionRequest("", "answer := "))

		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, sentID)

		var outcome domain.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		require.Equal(t, sentID, outcome.CompletionID)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		s := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/completions", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		s.routes.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should not route other methods", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodGet, "/v1/completions", nil)

		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleAccept(t *testing.T) {
	t.Run("should accept a displayed suggestion once", func(t *testing.T) {
		s := newTestServer(t)

		s.provider.EXPECT().
			Complete(mock.Anything, mock.Anything).
			Return(&domain.FetchResult{ID: "srv-7", Text: "fmt.Println()"}, nil).
			Once()
		s.sink.EXPECT().
			Record(mock.Anything, mock.MatchedBy(func(record domain.TelemetryRecord) bool {
				return record.Language == "go" && record.NumLines == 1 && record.Action == domain.ActionAccepted
			})).
			Return().
			Once()

		w := s.do(http.MethodPost, "/v1/completions", completionRequest("cmpl-7", "\t"))
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodPost, "/v1/completions/srv-7/accept", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var outcome domain.Outcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		require.Equal(t, "fmt.Println()", outcome.Completion)

		w = s.do(http.MethodPost, "/v1/completions/srv-7/accept", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should return not found for an unknown id", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodPost, "/v1/completions/nope/accept", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleCancel(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/v1/completions/cancel", nil)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.provider.EXPECT().
		Complete(mock.Anything, mock.Anything).
		Return(&domain.FetchResult{ID: "srv-9", Text: "ok"}, nil).
		Once()
	s.sink.EXPECT().Record(mock.Anything, mock.Anything).Return().Once()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/completions", completionRequest("c", "x")).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/completions/srv-9/accept", nil).Code)

	w := s.do(http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `ghostline_suggestion_resolved_total{action="accepted",language="go",num_lines="1"} 1`)
}
