package llm

import (
	"context"
	"sync"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// MockClient is a configurable mock for testing code that depends on a
// TextGenerator. Set the function fields to control behavior in tests.
type MockClient struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns Response and nil error.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Response is returned by Generate when GenerateFunc is nil.
	Response string

	// Stats is returned by TokenStats.
	Stats models.TokenStats

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	mu            sync.Mutex
	generateCalls int
	prompts       []string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{Model: "mock-model"}
}

// Generate implements TextGenerator.
func (m *MockClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	m.mu.Lock()
	m.generateCalls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.Response, nil
}

// TokenStats implements TextGenerator.
func (m *MockClient) TokenStats() models.TokenStats {
	return m.Stats
}

// Provider implements TextGenerator.
func (m *MockClient) Provider() string {
	return "mock"
}

// GetModel implements TextGenerator.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GenerateCalls returns how many times Generate was called.
func (m *MockClient) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// LastPrompt returns the most recent prompt, or "" if Generate was never called.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

var _ TextGenerator = (*MockClient)(nil)
