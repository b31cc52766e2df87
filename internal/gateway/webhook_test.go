package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent_ChargeSuccess(t *testing.T) {
	raw := []byte(`{"event":"charge.success","data":{"reference":"PAY-ABC123","id":987654321}}`)

	event, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, EventChargeSuccess, event.Kind)
	assert.Equal(t, "PAY-ABC123", event.Reference)
	assert.Equal(t, "987654321", event.TransactionID)
	assert.Equal(t, "charge.success", event.RawKind)
}

func TestParseEvent_ChargeFailed(t *testing.T) {
	raw := []byte(`{"event":"charge.failed","data":{"reference":"PAY-ABC123"}}`)

	event, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, EventChargeFailed, event.Kind)
	assert.Equal(t, "PAY-ABC123", event.Reference)
	assert.Empty(t, event.TransactionID)
}

func TestParseEvent_UnhandledKind(t *testing.T) {
	raw := []byte(`{"event":"charge.dispute","data":{"reference":"PAY-ABC123"}}`)

	event, err := ParseEvent(raw)
	require.NoError(t, err, "unknown kinds are reported, not rejected")
	assert.Equal(t, EventUnhandled, event.Kind)
	assert.Equal(t, "charge.dispute", event.RawKind)
}

func TestParseEvent_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"invalid json":      []byte(`{not json`),
		"missing event key": []byte(`{"data":{"reference":"PAY-ABC123"}}`),
		"success without reference": []byte(
			`{"event":"charge.success","data":{"id":1}}`),
		"failure without reference": []byte(
			`{"event":"charge.failed","data":{}}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEvent(raw)
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}
