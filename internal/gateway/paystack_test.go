package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string, timeout time.Duration) *Client {
	return NewClient(Config{
		SecretKey:     "sk_test_secret",
		InitializeURL: serverURL,
		CallbackURL:   "http://localhost:8080/payments/webhook",
	}, &http.Client{Timeout: timeout}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testInitRequest() InitRequest {
	return InitRequest{
		AmountMinorUnits: 5000,
		Email:            "john@example.com",
		Reference:        "PAY-ABC123",
		CustomerName:     "John Doe",
		PhoneNumber:      "1234567890",
		State:            "Lagos",
		Country:          "Nigeria",
		PaymentID:        "11111111-2222-3333-4444-555555555555",
	}
}

func TestInitialize_Success(t *testing.T) {
	var gotPayload initializePayload
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "PAY-ABC123"
			}
		}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL, time.Second).Initialize(context.Background(), testInitRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "abc123", result.AccessCode)
	assert.Equal(t, "PAY-ABC123", result.Reference)

	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, int64(5000), gotPayload.Amount)
	assert.Equal(t, "john@example.com", gotPayload.Email)
	assert.Equal(t, "PAY-ABC123", gotPayload.Reference)
	assert.Equal(t, "http://localhost:8080/payments/webhook", gotPayload.CallbackURL)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", gotPayload.Metadata["payment_id"])
	assert.Equal(t, "John Doe", gotPayload.Metadata["customer_name"])
}

func TestInitialize_Decline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"status": false,
			"message": "Invalid email address",
			"errors": {"email": ["email is not valid"]}
		}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Initialize(context.Background(), testInitRequest())

	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "Invalid email address", decline.Message)
	assert.Equal(t, []string{"email is not valid"}, decline.Fields["email"])
}

func TestInitialize_FalseStatusWith200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction limit exceeded"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Initialize(context.Background(), testInitRequest())

	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "Transaction limit exceeded", decline.Message)
}

func TestInitialize_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Initialize(context.Background(), testInitRequest())

	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "Failed to initialize payment", decline.Message)
}

func TestInitialize_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := testClient(srv.URL, time.Second).Initialize(context.Background(), testInitRequest())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	var decline *DeclineError
	assert.False(t, errors.As(err, &decline), "transport failures must not look like declines")
}

func TestInitialize_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 20*time.Millisecond).Initialize(context.Background(), testInitRequest())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}
