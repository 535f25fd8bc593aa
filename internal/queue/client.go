package queue

import (
	"context"
	"sync"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// MemoryClient buffers messages in-process for development and tests.
type MemoryClient struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

func (c *MemoryClient) Send(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

// Drain returns and clears the buffered messages.
func (c *MemoryClient) Drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.messages
	c.messages = nil
	return out
}

var _ Client = (*MemoryClient)(nil)
