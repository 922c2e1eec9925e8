// Package handler is the thin HTTP layer over the intake service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garantia/internal/domain"
	"garantia/internal/platform/device"
	"garantia/internal/platform/middleware"
	"garantia/pkg/requestcontext"
)

// IntakeService is what the transport needs from intake.
type IntakeService interface {
	Submit(ctx context.Context, req domain.TicketRequest) (*domain.TicketDraft, []domain.FieldError, error)
}

// Handler handles the public ticket endpoints.
type Handler struct {
	intake IntakeService
	logger *slog.Logger
}

// New creates the intake Handler.
func New(intake IntakeService, logger *slog.Logger) *Handler {
	return &Handler{intake: intake, logger: logger}
}

// Register registers the ticket routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets", h.handleCreateTicket)
	r.Get("/healthz", h.handleHealth)
}

// NewRouter wires the full middleware chain and all public endpoints,
// including the Prometheus scrape handler.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Handle("/metrics", promhttp.Handler())
	h.Register(r)
	return r
}

// handleCreateTicket accepts a request into the pipeline. 202 means
// "durably queued", not "processed"; the outcome arrives by notification.
func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req domain.TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "malformed ticket request",
			"error", err.Error(),
			"request_id", requestID,
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "BAD_REQUEST"})
		return
	}

	draft, fieldErrs, err := h.intake.Submit(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to accept ticket",
			"error", err.Error(),
			"request_id", requestID,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
		return
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	h.logger.InfoContext(ctx, "ticket accepted",
		"ticket_id", draft.TicketID,
		"client", device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		"request_id", requestID,
	)
	writeJSON(w, http.StatusAccepted, map[string]string{"ticket_id": draft.TicketID})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
