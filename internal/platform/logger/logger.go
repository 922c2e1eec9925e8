package logger

import (
	"log/slog"
	"os"
)

// New returns the structured logger shared by both binaries. JSON output so
// log aggregation can index the ticket_id and request_id attributes.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With("service", service)
}
