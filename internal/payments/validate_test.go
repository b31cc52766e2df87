package payments

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = CurrencyRules{
	Default: "NGN",
	Allowed: []string{"NGN", "USD", "GHS"},
}

func validRequest() CreateRequest {
	return CreateRequest{
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		PhoneNumber:   "1234567890",
		State:         "Lagos",
		Country:       "Nigeria",
		Amount:        "50.00",
		Currency:      "NGN",
	}
}

func TestValidate_Valid(t *testing.T) {
	v, verr := validRequest().Validate(testRules)
	require.Nil(t, verr)
	assert.Equal(t, "John Doe", v.CustomerName)
	assert.Equal(t, "NGN", v.Currency)
	assert.Equal(t, "50", v.Amount.String())
}

func TestValidate_Amount(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		ok     bool
	}{
		{"minimum unit", "0.01", true},
		{"above minimum", "50.00", true},
		{"integer", "100", true},
		{"zero", "0.00", false},
		{"negative", "-10.00", false},
		{"non numeric", "abc", false},
		{"empty", "", false},
		{"too many decimals", "1.001", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.Amount = AmountString(tc.amount)
			_, verr := req.Validate(testRules)
			if tc.ok {
				assert.Nil(t, verr)
			} else {
				require.NotNil(t, verr)
				assert.NotEmpty(t, verr.Fields["amount"])
			}
		})
	}
}

func TestValidate_Currency(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ngn", "NGN", true},
		{"NGN", "NGN", true},
		{"usd", "USD", true},
		{"ghs", "GHS", true},
		{"", "NGN", true}, // defaults to the configured base currency
		{"XXX", "", false},
		{"EUR", "", false},
	}

	for _, tc := range cases {
		t.Run("currency "+tc.in, func(t *testing.T) {
			req := validRequest()
			req.Currency = tc.in
			v, verr := req.Validate(testRules)
			if tc.ok {
				require.Nil(t, verr)
				assert.Equal(t, tc.want, v.Currency)
			} else {
				require.NotNil(t, verr)
				assert.NotEmpty(t, verr.Fields["currency"])
			}
		})
	}
}

func TestValidate_RequiredContactFields(t *testing.T) {
	mutations := map[string]func(*CreateRequest){
		"customer_name":  func(r *CreateRequest) { r.CustomerName = "" },
		"customer_email": func(r *CreateRequest) { r.CustomerEmail = "  " },
		"phone_number":   func(r *CreateRequest) { r.PhoneNumber = "" },
		"state":          func(r *CreateRequest) { r.State = "" },
		"country":        func(r *CreateRequest) { r.Country = "" },
	}

	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, verr := req.Validate(testRules)
			require.NotNil(t, verr)
			assert.NotEmpty(t, verr.Fields[field])
		})
	}
}

func TestValidate_MaxLengths(t *testing.T) {
	req := validRequest()
	req.CustomerName = strings.Repeat("a", 256)
	req.PhoneNumber = strings.Repeat("1", 21)
	req.State = strings.Repeat("s", 101)
	req.Country = strings.Repeat("c", 101)

	_, verr := req.Validate(testRules)
	require.NotNil(t, verr)
	for _, field := range []string{"customer_name", "phone_number", "state", "country"} {
		assert.NotEmpty(t, verr.Fields[field], field)
	}
}

func TestValidate_LengthsCountRunes(t *testing.T) {
	// 200 two-byte characters are 400 bytes but still within the 255 limit.
	req := validRequest()
	req.CustomerName = strings.Repeat("é", 200)
	_, verr := req.Validate(testRules)
	require.Nil(t, verr)

	req.CustomerName = strings.Repeat("é", 256)
	_, verr = req.Validate(testRules)
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.Fields["customer_name"])
}

func TestValidate_EmailFormat(t *testing.T) {
	for _, bad := range []string{"not-an-email", "john@", "john doe@example.com"} {
		req := validRequest()
		req.CustomerEmail = bad
		_, verr := req.Validate(testRules)
		require.NotNil(t, verr, bad)
		assert.NotEmpty(t, verr.Fields["customer_email"], bad)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	req := CreateRequest{Amount: "-1"}
	_, verr := req.Validate(testRules)
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields, 6)
}

func TestAmountString_UnmarshalJSON(t *testing.T) {
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"50.00"}`), &req))
	assert.Equal(t, AmountString("50.00"), req.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":50.25}`), &req))
	assert.Equal(t, AmountString("50.25"), req.Amount)
}
