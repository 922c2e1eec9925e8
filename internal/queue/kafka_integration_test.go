//go:build integration

package queue

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"

	"garantia/internal/domain"
)

func startBroker(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.1.2")
	require.NoError(t, err, "failed to start redpanda container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)
	return []string{broker}
}

func TestKafkaPublishConsumeAck(t *testing.T) {
	brokers := startBroker(t)
	ctx := context.Background()
	cfg := KafkaConfig{Brokers: brokers, Topic: "tickets.drafts.it", Group: "it-group"}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	pub, err := NewKafkaPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	draft := domain.TicketDraft{
		TicketID:   "it-1",
		IntakeTime: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		FullName:   "Maria da Silva",
		Email:      "maria.silva@example.com",
	}
	require.NoError(t, pub.Publish(ctx, draft))

	consumer, err := NewKafkaConsumer(cfg, logger)
	require.NoError(t, err)
	defer consumer.Close()

	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	delivery, err := consumer.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, draft, delivery.Draft())
	require.NoError(t, delivery.Ack(ctx))
}

func TestKafkaNackedDraftSurvivesLaterAck(t *testing.T) {
	brokers := startBroker(t)
	ctx := context.Background()
	cfg := KafkaConfig{Brokers: brokers, Topic: "tickets.drafts.nack", Group: "it-group"}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	pub, err := NewKafkaPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(ctx, domain.TicketDraft{TicketID: "it-3"}))
	require.NoError(t, pub.Publish(ctx, domain.TicketDraft{TicketID: "it-4"}))

	first, err := NewKafkaConsumer(cfg, logger)
	require.NoError(t, err)

	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	d1, err := first.Receive(recvCtx)
	require.NoError(t, err)
	d2, err := first.Receive(recvCtx)
	cancel()
	require.NoError(t, err)
	require.Equal(t, "it-3", d1.Draft().TicketID)
	require.Equal(t, "it-4", d2.Draft().TicketID)

	// the older draft fails while the newer one succeeds; the newer ack must
	// not advance the group offset past the failed draft
	require.NoError(t, d1.Nack(ctx))
	require.NoError(t, d2.Ack(ctx))

	// the nacked draft is retried in process first
	recvCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
	retry, err := first.Receive(recvCtx)
	cancel()
	require.NoError(t, err)
	require.Equal(t, "it-3", retry.Draft().TicketID)
	require.NoError(t, retry.Nack(ctx))
	first.Close()

	// nothing was committed, so a fresh group member sees the draft again
	second, err := NewKafkaConsumer(cfg, logger)
	require.NoError(t, err)
	defer second.Close()

	recvCtx, cancel = context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	seen := map[string]bool{}
	for !seen["it-3"] {
		d, err := second.Receive(recvCtx)
		require.NoError(t, err)
		seen[d.Draft().TicketID] = true
		require.NoError(t, d.Ack(recvCtx))
	}
}

func TestKafkaUncommittedRecordIsRedelivered(t *testing.T) {
	brokers := startBroker(t)
	ctx := context.Background()
	cfg := KafkaConfig{Brokers: brokers, Topic: "tickets.drafts.redelivery", Group: "it-group"}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	pub, err := NewKafkaPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	draft := domain.TicketDraft{TicketID: "it-2", IntakeTime: time.Now().UTC()}
	require.NoError(t, pub.Publish(ctx, draft))

	// first consumer receives but never commits
	first, err := NewKafkaConsumer(cfg, logger)
	require.NoError(t, err)
	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	delivery, err := first.Receive(recvCtx)
	cancel()
	require.NoError(t, err)
	require.NoError(t, delivery.Nack(ctx))
	first.Close()

	// a fresh group member gets the same record again
	second, err := NewKafkaConsumer(cfg, logger)
	require.NoError(t, err)
	defer second.Close()

	recvCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	redelivered, err := second.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, "it-2", redelivered.Draft().TicketID)
	require.NoError(t, redelivered.Ack(ctx))
}
