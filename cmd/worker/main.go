package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"garantia/internal/notify"
	"garantia/internal/platform/config"
	"garantia/internal/platform/httpserver"
	"garantia/internal/platform/logger"
	"garantia/internal/platform/metrics"
	platformredis "garantia/internal/platform/redis"
	"garantia/internal/processor"
	"garantia/internal/queue"
	"garantia/internal/ticketstore"
)

// main wires the processing side: Kafka consumer, ticket store, notification
// marker and notifier, plus a metrics/health listener.
func main() {
	cfg := config.FromEnv()
	log := logger.New("ticket-processor")
	m := metrics.New(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Queue.Kind != "kafka" {
		log.Error("worker requires QUEUE_KIND=kafka; memory mode runs inside cmd/server")
		os.Exit(2)
	}

	consumer, err := queue.NewKafkaConsumer(queue.KafkaConfig{
		Brokers: cfg.Queue.Brokers,
		Topic:   cfg.Queue.Topic,
		Group:   cfg.Queue.Group,
	}, log)
	if err != nil {
		log.Error("kafka consumer init failed", "error", err.Error())
		os.Exit(1)
	}
	defer consumer.Close()

	store, cleanupStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("ticket store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanupStore()

	markers, cleanupMarkers, err := buildMarker(ctx, cfg)
	if err != nil {
		log.Error("notification marker init failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanupMarkers()

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Notify.Kind == "webhook" {
		if cfg.Notify.WebhookURL == "" {
			log.Error("NOTIFIER_KIND=webhook requires NOTIFY_WEBHOOK_URL")
			os.Exit(2)
		}
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, nil)
	}

	proc := processor.New(consumer, store, markers, notifier, log, m)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httpserver.New(cfg.Server.MetricsAddr, mux)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting ticket processor",
			"workers", cfg.Workers,
			"topic", cfg.Queue.Topic,
			"group", cfg.Queue.Group,
		)
		if err := proc.RunPool(ctx, cfg.Workers); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("worker exited", "error", err.Error())
		os.Exit(1)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (ticketstore.Store, func(), error) {
	if cfg.Store.Kind != "postgres" {
		return ticketstore.NewMemory(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := ticketstore.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func buildMarker(ctx context.Context, cfg config.Config) (notify.Marker, func(), error) {
	switch cfg.Notify.MarkerKind {
	case "redis":
		client, err := platformredis.New(ctx, cfg.Notify.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("MARKER_KIND=redis requires REDIS_URL")
		}
		return notify.NewRedisMarker(client.Client), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		marker := notify.NewPostgresMarker(db)
		if err := marker.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return marker, func() { _ = db.Close() }, nil
	default:
		return notify.NewMemoryMarker(), func() {}, nil
	}
}
