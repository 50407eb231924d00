package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSessionStatus_IsKnown(t *testing.T) {
	for _, s := range []PaymentSessionStatus{
		SessionStatusAuthorized, SessionStatusPending, SessionStatusRequiresMore,
		SessionStatusError, SessionStatusCanceled,
	} {
		assert.True(t, s.IsKnown(), s)
	}

	assert.False(t, PaymentSessionStatus("settled").IsKnown())
	assert.False(t, PaymentSessionStatus("").IsKnown())
}

func TestSessionData_ID(t *testing.T) {
	tests := []struct {
		name string
		data SessionData
		want string
	}{
		{name: "present", data: SessionData{"id": "pay_1"}, want: "pay_1"},
		{name: "missing", data: SessionData{"other": "x"}, want: ""},
		{name: "integer", data: SessionData{"id": 42}, want: "42"},
		{name: "decoded json number", data: SessionData{"id": float64(12345)}, want: "12345"},
		{name: "fractional number", data: SessionData{"id": 1.5}, want: "1.5"},
		{name: "json.Number", data: SessionData{"id": json.Number("9007199254740993")}, want: "9007199254740993"},
		{name: "nested object", data: SessionData{"id": map[string]any{"x": 1}}, want: ""},
		{name: "null", data: SessionData{"id": nil}, want: ""},
		{name: "nil map", data: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.ID())
		})
	}
}
