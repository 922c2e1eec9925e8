// Package intake receives raw warranty-exchange requests, runs them through
// the Validator and hands accepted drafts to the queue. Rejections are
// returned synchronously; accepted requests are only confirmed after the
// queue acknowledges the publish.
package intake

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"garantia/internal/domain"
	"garantia/internal/platform/metrics"
	"garantia/internal/queue"
	"garantia/internal/validation"
	"garantia/pkg/requestcontext"
)

var tracer = otel.Tracer("garantia/intake")

// Service is the intake orchestration. It owns no state beyond its
// collaborators and is safe for concurrent use.
type Service struct {
	publisher queue.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the intake service.
func NewService(publisher queue.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{publisher: publisher, logger: logger, metrics: m}
}

// Submit validates the request and publishes the draft. The three outcomes
// are disjoint: field errors (business rejection, nothing published), an
// error (infrastructure failure, nothing published), or a draft that is
// durably queued by the time this returns.
func (s *Service) Submit(ctx context.Context, req domain.TicketRequest) (*domain.TicketDraft, []domain.FieldError, error) {
	ctx, span := tracer.Start(ctx, "intake.submit")
	defer span.End()

	now := requestcontext.Now(ctx)
	result := validation.Validate(req, now)
	if !result.Valid() {
		s.metrics.ObserveValidationFailures(result.Errors)
		s.logger.InfoContext(ctx, "ticket request rejected",
			"violations", len(result.Errors),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, result.Errors, nil
	}

	draft := result.Draft
	span.SetAttributes(attribute.String("ticket.id", draft.TicketID))

	if err := s.publisher.Publish(ctx, *draft); err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("publish ticket draft: %w", err)
	}

	s.metrics.TicketsSubmitted.Inc()
	s.logger.InfoContext(ctx, "ticket draft enqueued",
		"ticket_id", draft.TicketID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return draft, nil, nil
}
