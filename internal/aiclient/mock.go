package aiclient

import "context"

// MockClient implements Client for tests. Responses are returned in order;
// once exhausted, the last one repeats. Err, when set, fails every call.
type MockClient struct {
	Responses []string
	Err       error

	Calls   int
	Prompts []string
}

// NewMockClient creates a MockClient returning the given responses.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

// Complete records the prompt and returns the next canned response.
func (m *MockClient) Complete(_ context.Context, _, userPrompt string, _ float32, _ int32) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, userPrompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := m.Calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}
