package ticketstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garantia/internal/domain"
	"garantia/pkg/sentinel"
)

func sampleTicket(id string) domain.Ticket {
	return domain.Ticket{
		TicketDraft: domain.TicketDraft{
			TicketID:   id,
			IntakeTime: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			FullName:   "Maria da Silva",
			Email:      "maria.silva@example.com",
			Device: domain.DeviceInfo{
				Brand:        "Samsung",
				Model:        "Galaxy S23",
				SerialNumber: "SN123456789012",
			},
			PurchaseDate: time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
		},
		Status:      domain.StatusAccepted,
		ProcessedAt: time.Date(2024, 1, 15, 12, 0, 5, 0, time.UTC),
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	ticket := sampleTicket("t-1")

	require.NoError(t, store.Put(ctx, ticket))

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, ticket, got)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryGetUnknownID(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryPutOverwrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	ticket := sampleTicket("t-1")
	require.NoError(t, store.Put(ctx, ticket))

	ticket.Status = domain.StatusRejected
	ticket.RejectionReason = domain.ReasonMissingInvoice
	require.NoError(t, store.Put(ctx, ticket))

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, 1, store.Len())
}
