//go:build integration

package notify

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedisMarker(t *testing.T) *RedisMarker {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	return NewRedisMarker(client)
}

func startPostgresMarker(t *testing.T) *PostgresMarker {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("garantia"),
		tcpostgres.WithUsername("garantia"),
		tcpostgres.WithPassword("garantia"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	marker := NewPostgresMarker(db)
	require.NoError(t, marker.Migrate(ctx))
	return marker
}

func exerciseMarker(t *testing.T, m Marker) {
	t.Helper()
	ctx := context.Background()

	first, err := m.MarkIfFirst(ctx, "it-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := m.MarkIfFirst(ctx, "it-1")
	require.NoError(t, err)
	assert.False(t, again, "second claim for the same ticket must lose")

	other, err := m.MarkIfFirst(ctx, "it-2")
	require.NoError(t, err)
	assert.True(t, other)

	require.NoError(t, m.Clear(ctx, "it-1"))
	retry, err := m.MarkIfFirst(ctx, "it-1")
	require.NoError(t, err)
	assert.True(t, retry, "a cleared claim can be taken again")
}

func TestRedisMarker(t *testing.T) {
	exerciseMarker(t, startRedisMarker(t))
}

func TestPostgresMarker(t *testing.T) {
	exerciseMarker(t, startPostgresMarker(t))
}
