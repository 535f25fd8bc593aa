package email

import (
	"context"
	"sync"
)

// MemoryMailer records messages for dev mode and tests.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Message
}

// NewMemoryMailer constructs a MemoryMailer.
func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MemoryMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ Mailer = (*MemoryMailer)(nil)
