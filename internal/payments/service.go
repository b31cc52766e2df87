package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate/internal/gateway"
)

// GatewayClient is the slice of the gateway adapter the engine needs.
type GatewayClient interface {
	Initialize(ctx context.Context, req gateway.InitRequest) (*gateway.InitResult, error)
}

// Service is the payment lifecycle engine. It is the only component allowed
// to change a payment's status.
type Service struct {
	store   Store
	gateway GatewayClient
	rules   CurrencyRules
	logger  *slog.Logger
}

func NewService(store Store, gatewayClient GatewayClient, rules CurrencyRules, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gatewayClient,
		rules:   rules,
		logger:  logger,
	}
}

// Create validates the request, persists a pending payment with a fresh
// gateway reference, then initializes the hosted checkout. A gateway decline
// or network failure leaves the row pending with no authorization URL; the
// caller decides whether to retry initiation later.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Payment, error) {
	tracer := otel.Tracer("payment-service")
	ctx, span := tracer.Start(ctx, "create-payment")
	defer span.End()

	validated, verr := req.Validate(s.rules)
	if verr != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, verr
	}

	p := &Payment{
		ID:               uuid.New(),
		CustomerName:     validated.CustomerName,
		CustomerEmail:    validated.CustomerEmail,
		PhoneNumber:      validated.PhoneNumber,
		State:            validated.State,
		Country:          validated.Country,
		Amount:           validated.Amount,
		Currency:         validated.Currency,
		Status:           StatusPending,
		GatewayReference: NewReference(),
	}

	span.SetAttributes(
		attribute.String("payment.id", p.ID.String()),
		attribute.String("payment.reference", p.GatewayReference),
		attribute.String("payment.currency", p.Currency),
	)

	if err := s.store.Insert(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return nil, &StoreError{Op: "insert", Err: err}
	}

	result, err := s.gateway.Initialize(ctx, gateway.InitRequest{
		AmountMinorUnits: p.AmountMinorUnits(),
		Email:            p.CustomerEmail,
		Reference:        p.GatewayReference,
		CustomerName:     p.CustomerName,
		PhoneNumber:      p.PhoneNumber,
		State:            p.State,
		Country:          p.Country,
		PaymentID:        p.ID.String(),
	})
	if err != nil {
		// The pending row stays behind on purpose: a stalled pending
		// payment is visible for operational cleanup or retry.
		s.logger.Warn("gateway initialization failed, payment left pending",
			"paymentId", p.ID, "reference", p.GatewayReference, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gateway initialization failed")
		return nil, err
	}

	if err := s.store.AttachAuthorizationURL(ctx, p.ID, result.AuthorizationURL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Attach authorization url failed")
		return nil, &StoreError{Op: "attach authorization url", Err: err}
	}
	p.AuthorizationURL = result.AuthorizationURL

	span.SetStatus(codes.Ok, "Payment created")
	return p, nil
}

// Get is a pure read. A malformed id is reported as not found, matching the
// external contract for unparsable identifiers.
func (s *Service) Get(ctx context.Context, rawID string) (*Payment, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrNotFound
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get by id", Err: err}
	}
	return p, nil
}

// WebhookOutcome reports what applying an event did.
type WebhookOutcome struct {
	Payment *Payment
	// Duplicate is set when the payment already carried the requested
	// terminal state; the redelivery was a no-op.
	Duplicate bool
	// Unhandled is set for event kinds this service ignores.
	Unhandled bool
}

// ApplyWebhookEvent finalizes a payment from a gateway event. A charge
// success completes the payment and records the external transaction id, a
// charge failure fails it. Re-delivering the same terminal outcome is a
// no-op; a conflicting transition out of a terminal state is refused with a
// TransitionError.
func (s *Service) ApplyWebhookEvent(ctx context.Context, event gateway.Event) (*WebhookOutcome, error) {
	tracer := otel.Tracer("payment-service")
	ctx, span := tracer.Start(ctx, "apply-webhook-event", trace.WithAttributes(
		attribute.String("event.kind", event.RawKind),
		attribute.String("payment.reference", event.Reference),
	))
	defer span.End()

	var target Status
	var transactionID string
	switch event.Kind {
	case gateway.EventChargeSuccess:
		target = StatusCompleted
		transactionID = event.TransactionID
	case gateway.EventChargeFailed:
		target = StatusFailed
	default:
		s.logger.Info("ignoring unhandled webhook event", "event", event.RawKind)
		return &WebhookOutcome{Unhandled: true}, nil
	}

	p, applied, err := s.store.TransitionByReference(ctx, event.Reference, target, transactionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, "Unknown reference")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transition failed")
		return nil, &StoreError{Op: "transition by reference", Err: err}
	}

	if !applied {
		if p.Status == target {
			s.logger.Info("duplicate webhook delivery, payment already finalized",
				"reference", event.Reference, "status", p.Status)
			return &WebhookOutcome{Payment: p, Duplicate: true}, nil
		}
		span.SetStatus(codes.Error, "Conflicting transition")
		return nil, &TransitionError{From: p.Status, To: target}
	}

	s.logger.Info("payment finalized from webhook",
		"paymentId", p.ID, "reference", p.GatewayReference, "status", p.Status)
	span.SetStatus(codes.Ok, "Event applied")
	return &WebhookOutcome{Payment: p}, nil
}
