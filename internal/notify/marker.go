package notify

import (
	"context"
	"sync"
)

// Marker records which tickets already had their notification dispatched.
// MarkIfFirst must be atomic: under concurrent duplicate delivery exactly one
// caller sees first=true. Clear releases a claim whose dispatch failed so the
// redelivered draft can retry.
type Marker interface {
	MarkIfFirst(ctx context.Context, ticketID string) (first bool, err error)
	Clear(ctx context.Context, ticketID string) error
}

// MemoryMarker is the in-process marker for tests and development mode.
type MemoryMarker struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

func NewMemoryMarker() *MemoryMarker {
	return &MemoryMarker{sent: make(map[string]struct{})}
}

func (m *MemoryMarker) MarkIfFirst(_ context.Context, ticketID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sent[ticketID]; ok {
		return false, nil
	}
	m.sent[ticketID] = struct{}{}
	return true, nil
}

func (m *MemoryMarker) Clear(_ context.Context, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sent, ticketID)
	return nil
}
