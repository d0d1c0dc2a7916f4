package llm

import (
	"context"
	"sync"
)

// MockGenerator is a configurable text generator for testing. Responses are
// returned in order; once exhausted, Response is returned for every call.
type MockGenerator struct {
	mu        sync.Mutex
	Response  string
	Responses []string
	Err       error

	// Call tracking for assertions
	Prompts []string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Response: "Mock response"}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		r := m.Responses[0]
		m.Responses = m.Responses[1:]
		return r, nil
	}
	return m.Response, nil
}
