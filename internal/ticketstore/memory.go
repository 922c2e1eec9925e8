package ticketstore

import (
	"context"
	"sync"

	"garantia/internal/domain"
	"garantia/pkg/sentinel"
)

// Memory keeps tickets in a map. Used by tests and the development mode; it
// intentionally favors clarity over performance.
type Memory struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tickets: make(map[string]domain.Ticket)}
}

func (s *Memory) Put(_ context.Context, ticket domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.TicketID] = ticket
	return nil
}

func (s *Memory) Get(_ context.Context, ticketID string) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ticket, ok := s.tickets[ticketID]; ok {
		return ticket, nil
	}
	return domain.Ticket{}, sentinel.ErrNotFound
}

// Len reports the number of stored tickets. Test hook.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
