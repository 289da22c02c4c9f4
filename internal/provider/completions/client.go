// Package completions talks to an inline completion service over HTTP
// (POST /completions) and implements the domain.Provider interface.
package completions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

const (
	providerName = "completions"

	// maxErrorBody caps how much of a failed response is echoed in errors.
	maxErrorBody = 512
)

// Response represents the body returned by POST /completions.
type Response struct {
	ID      string `json:"id"`
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Client implements domain.Provider for the completion service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new completion service client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("completion service base URL is required")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
		limiter: limiter,
	}, nil
}

// Complete posts the request and extracts the first usable choice.
func (c *Client) Complete(ctx context.Context, req *domain.FetchRequest) (*domain.FetchResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/completions",
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	logger.Debug("calling completion service",
		observability.String("model", req.Model))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("completion service returned status %d: %s", resp.StatusCode, string(body))
	}

	var completionResp Response
	if decodeErr := json.NewDecoder(resp.Body).Decode(&completionResp); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	choices := make([]string, 0, len(completionResp.Choices))
	for _, choice := range completionResp.Choices {
		choices = append(choices, choice.Text)
	}

	text, err := domain.FirstChoice(choices)
	if err != nil {
		return nil, err
	}

	return &domain.FetchResult{ID: completionResp.ID, Text: text}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return providerName
}
