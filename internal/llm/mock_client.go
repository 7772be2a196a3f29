package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Responses are consumed in
// order; the last one repeats once the script is exhausted. Every request is
// recorded so tests can assert on the context that was sent.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Requests  []GenerateRequest

	next int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that replies with the given responses.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

// Generate returns the next scripted response, or Err if set.
func (m *MockClient) Generate(_ context.Context, req *GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, *req)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	resp := m.Responses[m.next]
	if m.next < len(m.Responses)-1 {
		m.next++
	}
	return resp, nil
}

// LastRequest returns the most recent request, or nil if none were made.
func (m *MockClient) LastRequest() *GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	req := m.Requests[len(m.Requests)-1]
	return &req
}
