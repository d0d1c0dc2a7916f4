package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

// Provider constants
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// NewGenerator creates a text generator for the named provider. An empty model
// selects the provider default. Returns an error if the provider is unknown
// or the API key is empty (except for mock).
func NewGenerator(provider, model, apiKey string) (domain.TextGenerator, error) {
	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiGenerator(context.Background(), apiKey, model)

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicGenerator(apiKey, model), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIGenerator(apiKey, model), nil

	case ProviderMock:
		return NewMockGenerator(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: gemini, anthropic, openai, mock)", provider)
	}
}

// TimeoutGenerator bounds every call of the wrapped generator and classifies
// its failures: deadline or cancellation as domain.ErrUpstreamTimeout,
// anything else as domain.ErrUpstreamUnavailable. Calls are never retried.
type TimeoutGenerator struct {
	next    domain.TextGenerator
	timeout time.Duration
}

func WithTimeout(next domain.TextGenerator, timeout time.Duration) *TimeoutGenerator {
	return &TimeoutGenerator{next: next, timeout: timeout}
}

func (g *TimeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.next.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.Upstream(fmt.Errorf("%w: %w", ctxErr, err))
		}
		return "", domain.Upstream(err)
	}
	return text, nil
}

// UnavailableGenerator fails every call. It stands in for a provider that
// could not be configured so that callers fall back to their local defaults.
type UnavailableGenerator struct {
	cause error
}

func NewUnavailableGenerator(cause error) *UnavailableGenerator {
	return &UnavailableGenerator{cause: cause}
}

func (g *UnavailableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", domain.Upstream(g.cause)
}
