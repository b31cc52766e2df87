package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo encodes the payment state machine:
//
//	pending    -> processing, completed, failed, cancelled
//	processing -> completed, failed
//
// completed, failed and cancelled are terminal. This predicate is the
// reference for the guarded UPDATE in PostgresStore.TransitionByReference:
// the SQL guard admits exactly the non-terminal states, so a guard miss on
// an existing row means CanTransitionTo refuses the requested target.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCompleted ||
			target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed
	default:
		return false
	}
}

type Payment struct {
	ID                   uuid.UUID
	CustomerName         string
	CustomerEmail        string
	PhoneNumber          string
	State                string
	Country              string
	Amount               decimal.Decimal
	Currency             string
	Status               Status
	GatewayReference     string
	GatewayTransactionID string
	AuthorizationURL     string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// minorUnitExponents holds ISO 4217 minor-unit exponents for the supported
// currencies. A currency with a different exponent only needs an entry here.
var minorUnitExponents = map[string]int32{
	"NGN": 2,
	"USD": 2,
	"GHS": 2,
}

// AmountMinorUnits converts the amount to the gateway's integer minor units
// (kobo for NGN), truncating anything below the smallest unit.
func (p *Payment) AmountMinorUnits() int64 {
	exp, ok := minorUnitExponents[p.Currency]
	if !ok {
		exp = 2
	}
	return p.Amount.Shift(exp).IntPart()
}
