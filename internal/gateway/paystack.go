package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBytes = 1 << 20

// DeclineError is a failure the gateway itself reported: the request arrived
// and was rejected. The message and field errors come from the gateway.
type DeclineError struct {
	Message string
	Fields  map[string][]string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("gateway declined: %s", e.Message)
}

// NetworkError is a transport-level failure. The outcome at the gateway is
// unknown, so callers must not treat it as a decline.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type Config struct {
	SecretKey     string
	InitializeURL string
	CallbackURL   string
}

// Client talks to the Paystack transaction API. It is the only component
// that performs gateway I/O.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// InitRequest carries everything the gateway needs to open a hosted
// checkout. Reference doubles as the idempotency key.
type InitRequest struct {
	AmountMinorUnits int64
	Email            string
	Reference        string
	CustomerName     string
	PhoneNumber      string
	State            string
	Country          string
	PaymentID        string
}

// InitResult is a successful initialization: the hosted checkout redirect
// plus the gateway access code.
type InitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type initializePayload struct {
	Amount      int64             `json:"amount"`
	Email       string            `json:"email"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
	Errors map[string][]string `json:"errors"`
}

// Initialize opens a transaction with the gateway and returns the hosted
// checkout URL. The error is either a *DeclineError or a *NetworkError.
func (c *Client) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	tracer := otel.Tracer("paystack-client")
	ctx, span := tracer.Start(ctx, "initialize-transaction", trace.WithAttributes(
		attribute.String("gateway.url", c.cfg.InitializeURL),
		attribute.String("payment.reference", req.Reference),
		attribute.Int64("payment.amount_minor_units", req.AmountMinorUnits),
	))
	defer span.End()

	payload := initializePayload{
		Amount:      req.AmountMinorUnits,
		Email:       req.Email,
		Reference:   req.Reference,
		CallbackURL: c.cfg.CallbackURL,
		Metadata: map[string]string{
			"customer_name": req.CustomerName,
			"phone_number":  req.PhoneNumber,
			"state":         req.State,
			"country":       req.Country,
			"payment_id":    req.PaymentID,
		},
	}

	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to serialize request body")
		return nil, &NetworkError{Err: fmt.Errorf("serialize request body: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.InitializeURL, bytes.NewReader(bodyJSON))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create HTTP request")
		return nil, &NetworkError{Err: fmt.Errorf("create http request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	span.AddEvent("sending-http-request")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error sending HTTP request")
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error reading response body")
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	var parsed initializeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.Error("gateway returned malformed body", "status", resp.StatusCode, "error", err)
		span.SetStatus(codes.Error, "Malformed gateway response")
		return nil, &DeclineError{Message: "Failed to initialize payment"}
	}

	if resp.StatusCode != http.StatusOK || !parsed.Status {
		message := parsed.Message
		if message == "" {
			message = "Failed to initialize payment"
		}
		span.SetStatus(codes.Error, "Gateway rejected transaction")
		return nil, &DeclineError{Message: message, Fields: parsed.Errors}
	}

	span.SetStatus(codes.Ok, "Transaction initialized")
	return &InitResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}
