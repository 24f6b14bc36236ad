package llm

import (
	"context"
	"sync"
)

// MockGateway is a test double for Gateway. It records every prompt it receives.
type MockGateway struct {
	Result Completion
	Err    error

	mu      sync.Mutex
	prompts []Prompt
}

// Complete records the prompt and returns the configured result and error.
func (m *MockGateway) Complete(_ context.Context, p Prompt) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)
	return m.Result, m.Err
}

// Calls returns the number of Complete invocations.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or the zero value if none.
func (m *MockGateway) LastPrompt() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}
