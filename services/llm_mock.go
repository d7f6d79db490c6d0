package services

import (
	"context"
	"fmt"
	"strings"
)

// MockLLMService provides a mock implementation for testing
type MockLLMService struct {
	GenerateResponseFunc func(ctx context.Context, prompt string) (string, error)
	EnabledFunc          func() bool
}

// NewMockLLMService creates a new mock LLM service
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

// GenerateResponse implements LLMService.GenerateResponse with mock behavior
func (m *MockLLMService) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt)
	}
	return defaultGenerateResponse(ctx, prompt)
}

// Enabled implements LLMService.Enabled with mock behavior
func (m *MockLLMService) Enabled() bool {
	if m.EnabledFunc != nil {
		return m.EnabledFunc()
	}
	return true
}

// defaultGenerateResponse echoes a compact summary of the prompt so tests
// can assert the mock was invoked without matching real model output.
func defaultGenerateResponse(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	first := strings.TrimSpace(lines[0])
	if len(first) > 80 {
		first = first[:80]
	}
	return fmt.Sprintf("mock response for: %s", first), nil
}
