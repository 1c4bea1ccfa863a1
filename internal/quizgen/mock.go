package quizgen

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is one canned reply of a MockCompleter.
type MockResponse struct {
	Text string
	Err  error
}

// MockCompleter returns canned responses in FIFO order. It is safe for
// concurrent use and records every completion it receives.
type MockCompleter struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Completion
	// Fallback, when set, answers every call once responses are exhausted.
	Fallback *MockResponse
}

func NewMockCompleter(responses ...MockResponse) *MockCompleter {
	return &MockCompleter{responses: responses}
}

func (m *MockCompleter) Complete(ctx context.Context, c Completion) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, c)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.responses) == 0 {
		if m.Fallback != nil {
			return m.Fallback.Text, m.Fallback.Err
		}
		return "", fmt.Errorf("mock completer: no response queued for call %d", len(m.calls))
	}

	r := m.responses[0]
	m.responses = m.responses[1:]
	return r.Text, r.Err
}

func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded completions.
func (m *MockCompleter) Calls() []Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Completion, len(m.calls))
	copy(out, m.calls)
	return out
}
