package payments

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxNameLength    = 255
	maxEmailLength   = 254
	maxPhoneLength   = 20
	maxStateLength   = 100
	maxCountryLength = 100
)

// minAmount is the smallest accepted charge: one minor unit.
var minAmount = decimal.New(1, -2)

// AmountString accepts a JSON string or number, so both "50.00" and 50.00
// bind. Parsing and range checks happen in Validate, not here.
type AmountString string

func (a *AmountString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = AmountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = AmountString(n.String())
	return nil
}

// CreateRequest is the raw creation payload as bound from the request body.
type CreateRequest struct {
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	PhoneNumber   string       `json:"phone_number"`
	State         string       `json:"state"`
	Country       string       `json:"country"`
	Amount        AmountString `json:"amount"`
	Currency      string       `json:"currency"`
}

// CurrencyRules is the configured currency allow-list and fallback.
type CurrencyRules struct {
	Default string
	Allowed []string
}

func (r CurrencyRules) allows(code string) bool {
	for _, c := range r.Allowed {
		if c == code {
			return true
		}
	}
	return false
}

// ValidatedCreate is a CreateRequest that passed validation, with the amount
// parsed and the currency normalized.
type ValidatedCreate struct {
	CustomerName  string
	CustomerEmail string
	PhoneNumber   string
	State         string
	Country       string
	Amount        decimal.Decimal
	Currency      string
}

// Validate checks the request against the input contract. It does no I/O and
// reports all problems at once as a field -> messages map.
func (r CreateRequest) Validate(rules CurrencyRules) (*ValidatedCreate, *ValidationError) {
	verr := &ValidationError{}

	name := strings.TrimSpace(r.CustomerName)
	if name == "" {
		verr.add("customer_name", "customer_name is required")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		verr.add("customer_name", fmt.Sprintf("customer_name must be at most %d characters", maxNameLength))
	}

	email := strings.TrimSpace(r.CustomerEmail)
	if email == "" {
		verr.add("customer_email", "customer_email is required")
	} else if utf8.RuneCountInString(email) > maxEmailLength {
		verr.add("customer_email", fmt.Sprintf("customer_email must be at most %d characters", maxEmailLength))
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.add("customer_email", "customer_email must be a valid email address")
	}

	phone := strings.TrimSpace(r.PhoneNumber)
	if phone == "" {
		verr.add("phone_number", "phone_number is required")
	} else if utf8.RuneCountInString(phone) > maxPhoneLength {
		verr.add("phone_number", fmt.Sprintf("phone_number must be at most %d characters", maxPhoneLength))
	}

	state := strings.TrimSpace(r.State)
	if state == "" {
		verr.add("state", "state is required")
	} else if utf8.RuneCountInString(state) > maxStateLength {
		verr.add("state", fmt.Sprintf("state must be at most %d characters", maxStateLength))
	}

	country := strings.TrimSpace(r.Country)
	if country == "" {
		verr.add("country", "country is required")
	} else if utf8.RuneCountInString(country) > maxCountryLength {
		verr.add("country", fmt.Sprintf("country must be at most %d characters", maxCountryLength))
	}

	var amount decimal.Decimal
	rawAmount := strings.TrimSpace(string(r.Amount))
	if rawAmount == "" {
		verr.add("amount", "amount is required")
	} else if parsed, err := decimal.NewFromString(rawAmount); err != nil {
		verr.add("amount", "amount must be a valid decimal number")
	} else if parsed.Exponent() < -2 {
		verr.add("amount", "amount must have at most two decimal places")
	} else if parsed.Cmp(minAmount) < 0 {
		verr.add("amount", "amount must be greater than zero")
	} else {
		amount = parsed
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = rules.Default
	}
	if !rules.allows(currency) {
		verr.add("currency", fmt.Sprintf("currency must be one of %s", strings.Join(rules.Allowed, ", ")))
	}

	if !verr.empty() {
		return nil, verr
	}

	return &ValidatedCreate{
		CustomerName:  name,
		CustomerEmail: email,
		PhoneNumber:   phone,
		State:         state,
		Country:       country,
		Amount:        amount,
		Currency:      currency,
	}, nil
}
