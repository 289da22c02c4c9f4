// Package openai provides an adapter for the OpenAI legacy completions API
// (prompt + suffix, i.e. fill-in-the-middle) using the official SDK. It
// implements the domain.Provider interface.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

const defaultModel = "gpt-3.5-turbo-instruct"

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	client    openai.Client
	name      string
	maxTokens int
}

// NewProvider creates a new OpenAI provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	// Retrying a keystroke-bound request only delays the next one.
	opts = append(opts, option.WithMaxRetries(config.MaxRetries))

	return &Provider{
		client:    openai.NewClient(opts...),
		name:      "openai",
		maxTokens: config.MaxTokens,
	}, nil
}

// Complete sends a completion request and returns the first usable choice.
func (p *Provider) Complete(ctx context.Context, req *domain.FetchRequest) (*domain.FetchResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI completions API")

	resp, err := p.client.Completions.New(ctx, p.toSDKParams(req))
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return p.toDomainResult(resp)
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// toSDKParams converts a domain request to SDK CompletionNewParams.
func (p *Provider) toSDKParams(req *domain.FetchRequest) openai.CompletionNewParams {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(req.PromptOptions.Prefix),
		},
		Temperature: openai.Float(req.Temperature),
		User:        openai.String(req.ClientID),
	}

	if req.PromptOptions.Suffix != "" {
		params.Suffix = openai.String(req.PromptOptions.Suffix)
	}

	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}

	return params
}

// toDomainResult converts an SDK response to a domain result.
func (p *Provider) toDomainResult(resp *openai.Completion) (*domain.FetchResult, error) {
	choices := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		choices = append(choices, choice.Text)
	}

	text, err := domain.FirstChoice(choices)
	if err != nil {
		return nil, err
	}

	return &domain.FetchResult{ID: resp.ID, Text: text}, nil
}
