package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garantia/internal/domain"
)

func draftWithID(id string) domain.TicketDraft {
	return domain.TicketDraft{TicketID: id, FullName: "Maria da Silva"}
}

func TestMemoryPublishReceive(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, draftWithID("t-1")))
	require.NoError(t, q.Publish(ctx, draftWithID("t-2")))
	require.Equal(t, 2, q.Len())

	first, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-1", first.Draft().TicketID)

	second, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-2", second.Draft().TicketID)

	require.NoError(t, first.Ack(ctx))
	require.NoError(t, second.Ack(ctx))
	assert.Equal(t, 0, q.Len())
}

func TestMemoryNackRedelivers(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, draftWithID("t-1")))

	delivery, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, delivery.Nack(ctx))

	redelivered, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-1", redelivered.Draft().TicketID)
	require.NoError(t, redelivered.Ack(ctx))
	assert.Equal(t, 0, q.Len())
}

func TestMemoryReceiveBlocksUntilPublish(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	got := make(chan string, 1)
	go func() {
		delivery, err := q.Receive(ctx)
		if err != nil {
			got <- "error: " + err.Error()
			return
		}
		got <- delivery.Draft().TicketID
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Publish(ctx, draftWithID("t-late")))

	select {
	case id := <-got:
		assert.Equal(t, "t-late", id)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never woke up")
	}
}

func TestMemoryReceiveHonorsCancellation(t *testing.T) {
	q := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryOneSignalDrainsAllItems(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish(ctx, draftWithID("t")))
	}

	deadline, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		delivery, err := q.Receive(deadline)
		require.NoError(t, err)
		require.NoError(t, delivery.Ack(deadline))
	}
	assert.Equal(t, 0, q.Len())
}
