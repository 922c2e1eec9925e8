package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const markerKeyPrefix = "garantia:notified:"

// RedisMarker shares the notification-sent marker across worker instances.
// SETNX gives the atomic first-claim; keys carry no TTL because the dedup
// guarantee must outlive any visibility timeout.
type RedisMarker struct {
	client *redis.Client
}

func NewRedisMarker(client *redis.Client) *RedisMarker {
	return &RedisMarker{client: client}
}

func (m *RedisMarker) MarkIfFirst(ctx context.Context, ticketID string) (bool, error) {
	first, err := m.client.SetNX(ctx, markerKeyPrefix+ticketID, "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("claim notification marker %s: %w", ticketID, err)
	}
	return first, nil
}

func (m *RedisMarker) Clear(ctx context.Context, ticketID string) error {
	if err := m.client.Del(ctx, markerKeyPrefix+ticketID).Err(); err != nil {
		return fmt.Errorf("clear notification marker %s: %w", ticketID, err)
	}
	return nil
}
