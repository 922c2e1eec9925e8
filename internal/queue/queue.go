// Package queue is the at-least-once hand-off between intake and processing.
// Implementations must not acknowledge Publish before the draft is durable,
// and must redeliver any delivery that was neither acked nor nacked when the
// consumer died.
package queue

import (
	"context"

	"garantia/internal/domain"
)

// Publisher enqueues validated drafts. Publish is all-or-nothing: when it
// returns nil the draft is durably queued, when it returns an error nothing
// was published.
type Publisher interface {
	Publish(ctx context.Context, draft domain.TicketDraft) error
}

// Consumer hands out deliveries one at a time, blocking while the queue is
// empty. Safe for concurrent use by a worker pool.
type Consumer interface {
	Receive(ctx context.Context) (Delivery, error)
}

// Delivery is one draft in flight. Ack removes it from the queue; Nack (or a
// consumer crash) makes it eligible for redelivery. The processor tolerates
// duplicates, so implementations may redeliver freely.
type Delivery interface {
	Draft() domain.TicketDraft
	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
