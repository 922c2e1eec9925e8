package notify

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresMarker backs the notification-sent marker with a table, for
// deployments that already run Postgres and nothing else. ON CONFLICT DO
// NOTHING makes the first-claim atomic.
type PostgresMarker struct {
	db *sql.DB
}

func NewPostgresMarker(db *sql.DB) *PostgresMarker {
	return &PostgresMarker{db: db}
}

const notificationsSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	ticket_id text PRIMARY KEY,
	sent_at   timestamptz NOT NULL DEFAULT now()
);
`

// Migrate creates the notifications table when it does not exist yet.
func (m *PostgresMarker) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, notificationsSchema); err != nil {
		return fmt.Errorf("migrate notifications table: %w", err)
	}
	return nil
}

func (m *PostgresMarker) MarkIfFirst(ctx context.Context, ticketID string) (bool, error) {
	res, err := m.db.ExecContext(ctx,
		`INSERT INTO notifications (ticket_id) VALUES ($1) ON CONFLICT (ticket_id) DO NOTHING`,
		ticketID)
	if err != nil {
		return false, fmt.Errorf("claim notification marker %s: %w", ticketID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim notification marker %s: %w", ticketID, err)
	}
	return rows == 1, nil
}

func (m *PostgresMarker) Clear(ctx context.Context, ticketID string) error {
	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE ticket_id = $1`, ticketID); err != nil {
		return fmt.Errorf("clear notification marker %s: %w", ticketID, err)
	}
	return nil
}
