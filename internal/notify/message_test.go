package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garantia/internal/domain"
)

func acceptedNotification() Notification {
	return Notification{
		TicketID:     "3f8a1b2c-0000-4000-8000-000000000000",
		Recipient:    "maria.silva@example.com",
		FullName:     "Maria da Silva",
		Status:       domain.StatusAccepted,
		Device:       "Samsung Galaxy S23",
		SerialNumber: "SN123456789012",
		IntakeTime:   time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC),
	}
}

func TestSubjectUsesShortID(t *testing.T) {
	assert.Equal(t, "Status do Ticket #3f8a1b2c", Subject(acceptedNotification()))

	short := acceptedNotification()
	short.TicketID = "abc"
	assert.Equal(t, "Status do Ticket #abc", Subject(short))
}

func TestBodyAccepted(t *testing.T) {
	body := Body(acceptedNotification())

	assert.Contains(t, body, "Olá Maria da Silva,")
	assert.Contains(t, body, "Status: ACEITO")
	assert.Contains(t, body, "Aparelho: Samsung Galaxy S23")
	assert.Contains(t, body, "Número de Série: SN123456789012")
	assert.Contains(t, body, "Data de Abertura: 15/01/2024 12:30")
	assert.NotContains(t, body, "Motivo:", "accepted outcomes carry no reason line")
}

func TestBodyRejectedIncludesReason(t *testing.T) {
	n := acceptedNotification()
	n.Status = domain.StatusRejected
	n.Reason = domain.ReasonExpiredWarranty

	body := Body(n)
	assert.Contains(t, body, "Status: REJEITADO")
	assert.Contains(t, body, "Motivo: EXPIRED_WARRANTY")
}

func TestFromTicket(t *testing.T) {
	ticket := domain.Ticket{
		TicketDraft: domain.TicketDraft{
			TicketID:   "t-1",
			IntakeTime: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			FullName:   "Maria da Silva",
			Email:      "maria.silva@example.com",
			Device: domain.DeviceInfo{
				Brand:        "Samsung",
				Model:        "Galaxy S23",
				SerialNumber: "SN123456789012",
			},
		},
		Status:          domain.StatusRejected,
		RejectionReason: domain.ReasonInvalidSerial,
	}

	n := FromTicket(ticket)
	require.Equal(t, "t-1", n.TicketID)
	assert.Equal(t, "maria.silva@example.com", n.Recipient)
	assert.Equal(t, "Samsung Galaxy S23", n.Device)
	assert.Equal(t, domain.StatusRejected, n.Status)
	assert.Equal(t, domain.ReasonInvalidSerial, n.Reason)
	assert.Equal(t, ticket.IntakeTime, n.IntakeTime)
}
