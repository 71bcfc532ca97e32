package pubsub

import "sync"

// MockPubSubClient records published events instead of sending them.
// It is safe for concurrent use.
type MockPubSubClient struct {
	mu sync.Mutex

	SendMessageFunc func(topic EventType, data any) error

	// DecodeErr, when set, is returned by ProcessMessage.
	DecodeErr error

	SendMessageCalls []SendMessageCall
	Decoded          int
}

// SendMessageCall is one published event.
type SendMessageCall struct {
	Topic string
	Data  any
}

func NewMock() *MockPubSubClient {
	return &MockPubSubClient{}
}

func (m *MockPubSubClient) SendMessage(topic EventType, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMessageCalls = append(m.SendMessageCalls, SendMessageCall{Topic: string(topic), Data: data})
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(topic, data)
	}
	return nil
}

// ProcessMessage decodes like the real client unless DecodeErr is set.
func (m *MockPubSubClient) ProcessMessage(data []byte, returnValue any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecodeErr != nil {
		return m.DecodeErr
	}
	m.Decoded++
	return decode(data, returnValue)
}

// SnapshotEvents returns the payloads of every snapshot-created event sent so far.
func (m *MockPubSubClient) SnapshotEvents() []SnapshotCreated {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []SnapshotCreated
	for _, call := range m.SendMessageCalls {
		if call.Topic != string(EventSnapshotCreated) {
			continue
		}
		if event, ok := call.Data.(SnapshotCreated); ok {
			events = append(events, event)
		}
	}
	return events
}
