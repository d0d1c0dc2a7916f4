package embedding

import (
	"fmt"
	"strings"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

// Dimensions matches the beliefs.topic_embedding column.
const Dimensions = 1536

// Provider constants
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient creates an embedding client based on the provider name. The none
// provider returns a nil client, which makes topic lookup fall back to exact
// matching. Returns an error if the provider is unknown or the API key is
// empty.
func NewClient(provider, apiKey string) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embedding provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: none, openai, mock)", provider)
	}
}

func normalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}
