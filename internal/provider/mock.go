package provider

import (
	"context"
	"net/http"
	"sync"
)

// MockResponse is a canned response for the MockClient.
type MockResponse struct {
	Text string
	Err  error
}

// MockCall records one Complete invocation.
type MockCall struct {
	Prompt  string
	Attempt int
}

// MockClient is a deterministic Client for tests. It returns canned
// responses in FIFO order and records every call.
type MockClient struct {
	name string

	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
}

// NewMock creates a MockClient reporting the given provider name.
func NewMock(name string, responses ...MockResponse) *MockClient {
	return &MockClient{name: name, responses: responses}
}

func (m *MockClient) Name() string { return m.name }

// Complete returns the next canned response, or a provider Error when the
// queue is empty.
func (m *MockClient) Complete(_ context.Context, prompt string, attempt int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Attempt: attempt})

	if len(m.responses) == 0 {
		return "", &Error{Provider: m.name, Status: http.StatusServiceUnavailable, Body: "mock: out of responses"}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

// Calls returns a copy of all recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
