// Package processor consumes ticket drafts from the queue, finalizes them and
// triggers the outcome notification. Processing is idempotent: redelivery of
// a draft that was already finalized writes nothing and notifies at most
// once, so the queue's at-least-once contract is the only retry mechanism the
// system needs.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"garantia/internal/domain"
	"garantia/internal/notify"
	"garantia/internal/platform/metrics"
	"garantia/internal/queue"
	"garantia/internal/ticketstore"
	"garantia/internal/validation"
	"garantia/pkg/sentinel"
)

var tracer = otel.Tracer("garantia/processor")

// Processor turns queued drafts into finalized tickets.
type Processor struct {
	consumer queue.Consumer
	store    ticketstore.Store
	markers  notify.Marker
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New wires a processor; all collaborators are required.
func New(
	consumer queue.Consumer,
	store ticketstore.Store,
	markers notify.Marker,
	notifier notify.Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Processor {
	return &Processor{
		consumer: consumer,
		store:    store,
		markers:  markers,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

// Run is one worker's receive/process/ack loop. A failed draft is nacked and
// comes back via redelivery; Run itself only returns on context cancellation
// or a broken consumer.
func (p *Processor) Run(ctx context.Context) error {
	for {
		delivery, err := p.consumer.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("receive draft: %w", err)
		}

		draft := delivery.Draft()
		if err := p.Process(ctx, draft); err != nil {
			p.logger.ErrorContext(ctx, "processing failed, draft returns to queue",
				"ticket_id", draft.TicketID,
				"error", err.Error(),
			)
			if nackErr := delivery.Nack(ctx); nackErr != nil {
				p.logger.ErrorContext(ctx, "nack failed", "ticket_id", draft.TicketID, "error", nackErr.Error())
			}
			continue
		}
		if err := delivery.Ack(ctx); err != nil {
			// The draft will be redelivered; idempotency absorbs it.
			p.logger.ErrorContext(ctx, "ack failed", "ticket_id", draft.TicketID, "error", err.Error())
		}
	}
}

// RunPool runs workers concurrent Run loops and returns the first error.
func (p *Processor) RunPool(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error { return p.Run(ctx) })
	}
	return g.Wait()
}

// Process finalizes one draft. Safe to call any number of times for the same
// draft: the store lookup skips the write on redelivery, and the notification
// marker ensures at most one dispatch per ticket id.
func (p *Processor) Process(ctx context.Context, draft domain.TicketDraft) error {
	ctx, span := tracer.Start(ctx, "processor.process",
		trace.WithAttributes(attribute.String("ticket.id", draft.TicketID)))
	defer span.End()
	start := time.Now()

	ticket, err := p.store.Get(ctx, draft.TicketID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		ticket = p.finalize(draft)
		if err := p.store.Put(ctx, ticket); err != nil {
			span.RecordError(err)
			return fmt.Errorf("persist ticket: %w", err)
		}
		p.metrics.TicketsProcessed.WithLabelValues(string(ticket.Status)).Inc()
		p.logger.InfoContext(ctx, "ticket finalized",
			"ticket_id", ticket.TicketID,
			"status", string(ticket.Status),
			"reason", ticket.RejectionReason,
		)
	case err != nil:
		span.RecordError(err)
		return fmt.Errorf("look up ticket: %w", err)
	default:
		p.metrics.DuplicateDelivery.Inc()
		p.logger.InfoContext(ctx, "duplicate delivery absorbed", "ticket_id", ticket.TicketID)
	}

	if err := p.dispatchNotification(ctx, ticket); err != nil {
		span.RecordError(err)
		return err
	}

	p.metrics.ProcessingSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// finalize re-evaluates the business rules and stamps the terminal state. The
// warranty window is judged at the intake timestamp the draft carries, so a
// ticket that was eligible when submitted is never rejected for queueing
// delay.
func (p *Processor) finalize(draft domain.TicketDraft) domain.Ticket {
	status, reason := validation.Outcome(draft)
	return domain.Ticket{
		TicketDraft:     draft,
		Status:          status,
		RejectionReason: reason,
		ProcessedAt:     time.Now().UTC(),
	}
}

// dispatchNotification claims the marker before sending and releases it when
// the send fails, so a redelivered draft retries the notification while a
// successful send is never repeated.
func (p *Processor) dispatchNotification(ctx context.Context, ticket domain.Ticket) error {
	first, err := p.markers.MarkIfFirst(ctx, ticket.TicketID)
	if err != nil {
		return fmt.Errorf("claim notification marker: %w", err)
	}
	if !first {
		return nil
	}

	if err := p.notifier.Notify(ctx, notify.FromTicket(ticket)); err != nil {
		if clearErr := p.markers.Clear(ctx, ticket.TicketID); clearErr != nil {
			p.logger.ErrorContext(ctx, "failed to release notification marker",
				"ticket_id", ticket.TicketID,
				"error", clearErr.Error(),
			)
		}
		return fmt.Errorf("notify requester: %w", err)
	}

	p.metrics.NotificationsSent.Inc()
	return nil
}
