// Package ticketstore persists finalized tickets keyed by ticket id. The port
// is interface-driven so the processor stays free of infrastructure types;
// in-memory and Postgres implementations are selected at composition time.
package ticketstore

import (
	"context"

	"garantia/internal/domain"
)

// Store is durable ticket persistence. Put is an idempotent upsert; Get
// returns sentinel.ErrNotFound for unknown ids.
type Store interface {
	Put(ctx context.Context, ticket domain.Ticket) error
	Get(ctx context.Context, ticketID string) (domain.Ticket, error)
}
