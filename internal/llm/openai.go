package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const (
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

type OpenAIGenerator struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{
		apiKey:     apiKey,
		model:      model,
		url:        openAIChatURL,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Replies are short debate turns or small JSON verdicts.
const (
	openAIMaxTokens     = 1024
	openAIMaxReplyBytes = 1 << 20
)

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "openai: build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "openai: chat request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, openAIMaxReplyBytes))
	if err != nil {
		return "", eris.Wrap(err, "openai: read chat response")
	}

	var result chatResponse
	decodeErr := json.Unmarshal(raw, &result)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && result.Error != nil {
			return "", fmt.Errorf("openai: status %d (%s): %s", resp.StatusCode, result.Error.Type, result.Error.Message)
		}
		return "", fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrMalformedUpstreamResponse, decodeErr)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices", domain.ErrMalformedUpstreamResponse)
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: openai: empty reply (finish_reason %q)",
			domain.ErrMalformedUpstreamResponse, result.Choices[0].FinishReason)
	}
	return text, nil
}
