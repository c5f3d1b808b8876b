package mail

import (
	"context"
	"time"
)

// MockClient is an in-memory Client for tests. Messages are returned in the
// order given to NewMockClient.
type MockClient struct {
	Messages []RawMessage
	ListErr  error
	GetErr   error

	ListCalls int
	GetCalls  int
}

// NewMockClient creates a MockClient serving the given messages.
func NewMockClient(messages ...RawMessage) *MockClient {
	return &MockClient{Messages: messages}
}

// ListRecent returns the ids of all mock messages.
func (m *MockClient) ListRecent(_ context.Context, _ time.Time) ([]string, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	ids := make([]string, 0, len(m.Messages))
	for _, msg := range m.Messages {
		ids = append(ids, msg.ID)
	}
	return ids, nil
}

// GetFull returns the mock message with the given id.
func (m *MockClient) GetFull(_ context.Context, id string) (*RawMessage, error) {
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for i := range m.Messages {
		if m.Messages[i].ID == id {
			msg := m.Messages[i]
			return &msg, nil
		}
	}
	return nil, ErrMessageNotFound
}
