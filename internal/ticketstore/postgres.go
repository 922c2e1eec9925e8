package ticketstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"garantia/internal/domain"
	"garantia/pkg/sentinel"
)

// Postgres persists tickets in PostgreSQL. The full ticket is stored as a
// jsonb payload so reads round-trip field-for-field; status and processing
// time are lifted into columns for operational queries.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const ticketsSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	ticket_id    text PRIMARY KEY,
	status       text NOT NULL,
	processed_at timestamptz NOT NULL,
	payload      jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets (status);
`

// Migrate creates the tickets table when it does not exist yet.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ticketsSchema); err != nil {
		return fmt.Errorf("migrate tickets table: %w", err)
	}
	return nil
}

func (s *Postgres) Put(ctx context.Context, ticket domain.Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode ticket %s: %w", ticket.TicketID, err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO tickets (ticket_id, status, processed_at, payload)
VALUES ($1, $2, $3, $4)
ON CONFLICT (ticket_id) DO UPDATE
SET status = EXCLUDED.status,
    processed_at = EXCLUDED.processed_at,
    payload = EXCLUDED.payload`,
		ticket.TicketID, string(ticket.Status), ticket.ProcessedAt, payload)
	if err != nil {
		return fmt.Errorf("save ticket %s: %w", ticket.TicketID, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM tickets WHERE ticket_id = $1`, ticketID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("find ticket %s: %w", ticketID, err)
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(payload, &ticket); err != nil {
		return domain.Ticket{}, fmt.Errorf("decode ticket %s: %w", ticketID, err)
	}
	return ticket, nil
}
