package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	openAIModel        = "text-embedding-3-small"
	requestTimeout     = 10 * time.Second
	maxResponseBytes   = 1 << 20
)

// OpenAIClient embeds belief topics with the OpenAI embeddings API.
type OpenAIClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		url:        openAIEmbeddingURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed returns the topic's vector. Topics are normalized first so that
// casing and spacing do not move a belief to a different neighbourhood.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	topic := normalizeTopic(text)
	if topic == "" {
		return nil, eris.New("embedding: empty topic")
	}
	body, err := json.Marshal(embeddingRequest{
		Model:      openAIModel,
		Input:      topic,
		Dimensions: Dimensions,
	})
	if err != nil {
		return nil, eris.Wrap(err, "embedding: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "embedding: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "embedding: request")
	}
	defer func() { _ = resp.Body.Close() }()

	var result embeddingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, eris.Wrapf(err, "embedding: decode response (status %d)", resp.StatusCode)
	}
	if result.Error != nil {
		return nil, eris.Errorf("embedding: status %d: %s", resp.StatusCode, result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("embedding: status %d", resp.StatusCode)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) != Dimensions {
		return nil, eris.Errorf("embedding: no %d-dimensional vector in response", Dimensions)
	}
	return result.Data[0].Embedding, nil
}
