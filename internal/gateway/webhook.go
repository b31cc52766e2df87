package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEvent marks webhook payloads that cannot be interpreted at
// all: invalid JSON, a missing event key, or a recognized kind without a
// reference.
var ErrMalformedEvent = errors.New("malformed webhook event")

type EventKind string

const (
	EventChargeSuccess EventKind = "charge.success"
	EventChargeFailed  EventKind = "charge.failed"
	// EventUnhandled covers kinds this service acknowledges but ignores.
	EventUnhandled EventKind = "unhandled"
)

// Event is a parsed webhook delivery.
type Event struct {
	Kind          EventKind
	Reference     string
	TransactionID string
	// RawKind keeps the gateway's event name for logging and dedup keys.
	RawKind string
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string      `json:"reference"`
		ID        json.Number `json:"id"`
	} `json:"data"`
}

// ParseEvent interprets a raw webhook body. Unknown event kinds are not an
// error: they come back as EventUnhandled so the caller can acknowledge and
// ignore them.
func ParseEvent(raw []byte) (Event, error) {
	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if payload.Event == "" {
		return Event{}, fmt.Errorf("%w: missing event key", ErrMalformedEvent)
	}

	switch EventKind(payload.Event) {
	case EventChargeSuccess:
		if payload.Data.Reference == "" {
			return Event{}, fmt.Errorf("%w: missing reference", ErrMalformedEvent)
		}
		return Event{
			Kind:          EventChargeSuccess,
			Reference:     payload.Data.Reference,
			TransactionID: payload.Data.ID.String(),
			RawKind:       payload.Event,
		}, nil
	case EventChargeFailed:
		if payload.Data.Reference == "" {
			return Event{}, fmt.Errorf("%w: missing reference", ErrMalformedEvent)
		}
		return Event{
			Kind:      EventChargeFailed,
			Reference: payload.Data.Reference,
			RawKind:   payload.Event,
		}, nil
	default:
		return Event{
			Kind:      EventUnhandled,
			Reference: payload.Data.Reference,
			RawKind:   payload.Event,
		}, nil
	}
}
