// Package echo provides an offline provider that repeats the current line of
// the prompt. It implements the domain.Provider interface without making
// external API calls, providing deterministic suggestions for development
// and editor integration tests.
package echo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/observability"
)

const providerName = "echo"

// Provider implements the domain.Provider interface for echo testing.
type Provider struct {
	name string
}

// NewProvider creates a new echo provider.
// No configuration is required as this provider operates entirely in-memory.
func NewProvider() *Provider {
	return &Provider{name: providerName}
}

// Complete suggests the text of the line the cursor is on, so accepting it
// duplicates that line.
func (p *Provider) Complete(ctx context.Context, req *domain.FetchRequest) (*domain.FetchResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	line := currentLine(req.PromptOptions.Prefix)
	text, err := domain.FirstChoice([]string{strings.TrimSpace(line)})
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Debug("echo completed",
		observability.Int("length", len(text)))

	return &domain.FetchResult{
		ID:   "echo-" + uuid.NewString(),
		Text: text,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// currentLine returns the prefix text after the last newline.
func currentLine(prefix string) string {
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		return prefix[i+1:]
	}
	return prefix
}
