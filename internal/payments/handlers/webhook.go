package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"paygate/internal/dedup"
	"paygate/internal/gateway"
	"paygate/internal/payments"
)

type WebhookHandler struct {
	service *payments.Service
	dedup   *dedup.Store
}

// NewWebhookHandler wires the webhook endpoint. dedupStore may be nil, in
// which case every delivery goes to the engine (the transition itself is
// still idempotent).
func NewWebhookHandler(service *payments.Service, dedupStore *dedup.Store) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		dedup:   dedupStore,
	}
}

func (h *WebhookHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("payment-handler")
	ctx, span := tracer.Start(ctx, "webhook-handler", trace.WithAttributes(
		attribute.String("handler", "webhook"),
	))
	defer span.End()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, envelope{
			Status:  "error",
			Message: "Unable to read webhook payload",
		})
	}

	event, err := gateway.ParseEvent(body)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, envelope{
			Status:  "error",
			Message: "Malformed webhook payload",
		})
	}

	span.SetAttributes(
		attribute.String("event.kind", event.RawKind),
		attribute.String("payment.reference", event.Reference),
	)

	// Unknown event kinds are acknowledged, not rejected: an error here
	// would make the gateway redeliver events we deliberately ignore.
	if event.Kind == gateway.EventUnhandled {
		return c.JSON(http.StatusOK, envelope{
			Status:  "success",
			Message: "Webhook event ignored",
		})
	}

	dedupKey := event.RawKind + ":" + event.Reference + ":" + event.TransactionID
	if h.dedup != nil && h.dedup.Seen(ctx, dedupKey) {
		return c.JSON(http.StatusOK, envelope{
			Status:  "success",
			Message: "Webhook already processed",
		})
	}

	outcome, err := h.service.ApplyWebhookEvent(ctx, event)
	if err != nil {
		var transitionErr *payments.TransitionError
		switch {
		case errors.Is(err, payments.ErrNotFound):
			return c.JSON(http.StatusBadRequest, envelope{
				Status:  "error",
				Message: "Payment with reference " + event.Reference + " not found",
			})
		case errors.As(err, &transitionErr):
			// Terminal state conflicts are acknowledged so the gateway
			// stops redelivering; the row is left untouched.
			c.Logger().Warnf("conflicting webhook for reference %s: %v", event.Reference, err)
			return c.JSON(http.StatusOK, envelope{
				Status:  "success",
				Message: "Webhook ignored, payment already finalized",
			})
		default:
			span.RecordError(err)
			c.Logger().Errorf("error while processing webhook: %v", err)
			return c.JSON(http.StatusInternalServerError, envelope{
				Status:  "error",
				Message: "Error processing webhook",
			})
		}
	}

	if outcome.Duplicate {
		return c.JSON(http.StatusOK, envelope{
			Status:  "success",
			Message: "Webhook already processed",
		})
	}

	if h.dedup != nil {
		h.dedup.Mark(ctx, dedupKey)
	}

	return c.JSON(http.StatusOK, envelope{
		Status:  "success",
		Message: "Webhook processed successfully",
	})
}
