package pubsub

import (
	"context"
	"sync"
)

// MemoryFeed is the single-node ChangeFeed used in tests and DB-less mode.
type MemoryFeed struct {
	mu       sync.RWMutex
	handlers map[string][]func(payload []byte)
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{handlers: make(map[string][]func(payload []byte))}
}

func (f *MemoryFeed) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.RLock()
	handlers := append(([]func(payload []byte))(nil), f.handlers[channel]...)
	f.mu.RUnlock()

	for _, handler := range handlers {
		handler(payload)
	}

	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) {
	f.mu.Lock()
	f.handlers[channel] = append(f.handlers[channel], func(payload []byte) {
		if ctx.Err() != nil {
			return
		}
		handler(payload)
	})
	f.mu.Unlock()
}
