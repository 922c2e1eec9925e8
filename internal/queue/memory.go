package queue

import (
	"context"
	"sync"

	"garantia/internal/domain"
)

// Memory is the in-process queue used by tests and by the server's
// development mode. Unbounded; Nack requeues at the tail, which is enough to
// exercise the redelivery contract without a broker.
type Memory struct {
	mu    sync.Mutex
	items []domain.TicketDraft
	ready chan struct{}
}

// NewMemory returns an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{ready: make(chan struct{}, 1)}
}

func (q *Memory) Publish(_ context.Context, draft domain.TicketDraft) error {
	q.mu.Lock()
	q.items = append(q.items, draft)
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *Memory) Receive(ctx context.Context) (Delivery, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			draft := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				// wake the next waiter; one signal may cover many publishes
				q.signal()
			}
			return &memoryDelivery{queue: q, draft: draft}, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len reports the number of pending drafts. Test hook.
func (q *Memory) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Memory) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

type memoryDelivery struct {
	queue *Memory
	draft domain.TicketDraft
}

func (d *memoryDelivery) Draft() domain.TicketDraft { return d.draft }

func (d *memoryDelivery) Ack(context.Context) error { return nil }

func (d *memoryDelivery) Nack(ctx context.Context) error {
	return d.queue.Publish(ctx, d.draft)
}
