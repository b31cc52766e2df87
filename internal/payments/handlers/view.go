package handlers

import (
	"time"

	"paygate/internal/payments"
)

// envelope mirrors the response shape of the public API: a status marker, a
// human message and either the payment view or a field-error map.
type envelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Payment *paymentView        `json:"payment,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type paymentView struct {
	ID                   string    `json:"id"`
	CustomerName         string    `json:"customer_name"`
	CustomerEmail        string    `json:"customer_email"`
	PhoneNumber          string    `json:"phone_number"`
	State                string    `json:"state"`
	Country              string    `json:"country"`
	Amount               string    `json:"amount"`
	Currency             string    `json:"currency"`
	Status               string    `json:"status"`
	GatewayReference     string    `json:"gateway_reference"`
	GatewayTransactionID string    `json:"gateway_transaction_id,omitempty"`
	AuthorizationURL     string    `json:"authorization_url,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func newPaymentView(p *payments.Payment) *paymentView {
	return &paymentView{
		ID:                   p.ID.String(),
		CustomerName:         p.CustomerName,
		CustomerEmail:        p.CustomerEmail,
		PhoneNumber:          p.PhoneNumber,
		State:                p.State,
		Country:              p.Country,
		Amount:               p.Amount.StringFixed(2),
		Currency:             p.Currency,
		Status:               string(p.Status),
		GatewayReference:     p.GatewayReference,
		GatewayTransactionID: p.GatewayTransactionID,
		AuthorizationURL:     p.AuthorizationURL,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
