package email

import "sync"

// MockProvider records messages instead of sending them. Used in tests
// and in development environments without SMTP credentials.
type MockProvider struct {
	mu   sync.Mutex
	Sent []MockMessage
}

type MockMessage struct {
	To      []string
	Subject string
	Body    string
}

func (m *MockProvider) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, MockMessage{To: to, Subject: subject, Body: body})
	return nil
}
