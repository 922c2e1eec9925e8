package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the full environment surface for both binaries. Endpoints and
// credentials are owned by deployment tooling; this package only reads them
// and hands them to constructors so nothing in the core touches ambient state.
type Config struct {
	Server  Server
	Queue   Queue
	Store   Store
	Notify  Notify
	Workers int
}

// Server captures HTTP listener configuration.
type Server struct {
	Addr        string
	MetricsAddr string
}

// Queue selects and configures the draft queue.
type Queue struct {
	Kind    string // "memory" or "kafka"
	Brokers []string
	Topic   string
	Group   string
}

// Store selects and configures ticket persistence.
type Store struct {
	Kind        string // "memory" or "postgres"
	DatabaseURL string
}

// Notify selects the outbound channel and the notification-sent marker.
type Notify struct {
	Kind       string // "log" or "webhook"
	WebhookURL string
	MarkerKind string // "memory", "redis" or "postgres"
	RedisURL   string
}

// FromEnv builds the configuration from environment variables so main stays
// lean. Defaults favor the all-in-memory development mode.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:        envString("GARANTIA_ADDR", ":8080"),
			MetricsAddr: envString("GARANTIA_METRICS_ADDR", ":9091"),
		},
		Queue: Queue{
			Kind:    envString("QUEUE_KIND", "memory"),
			Brokers: envCSV("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   envString("KAFKA_TOPIC", "tickets.drafts"),
			Group:   envString("KAFKA_GROUP_ID", "ticket-processor"),
		},
		Store: Store{
			Kind:        envString("STORE_KIND", "memory"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Notify: Notify{
			Kind:       envString("NOTIFIER_KIND", "log"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			MarkerKind: envString("MARKER_KIND", "memory"),
			RedisURL:   os.Getenv("REDIS_URL"),
		},
		Workers: envInt("WORKERS", 4),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envCSV(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
