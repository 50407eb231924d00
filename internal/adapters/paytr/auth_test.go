package paytr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSignature(t *testing.T) {
	// Deterministic for identical input
	sig1 := CalculateSignature("secret", "100001", "POST", "/capture", []byte(`{"amount":500}`))
	sig2 := CalculateSignature("secret", "100001", "POST", "/capture", []byte(`{"amount":500}`))
	assert.Equal(t, sig1, sig2)
	assert.NotEmpty(t, sig1)

	// Every input participates
	assert.NotEqual(t, sig1, CalculateSignature("other", "100001", "POST", "/capture", []byte(`{"amount":500}`)))
	assert.NotEqual(t, sig1, CalculateSignature("secret", "100002", "POST", "/capture", []byte(`{"amount":500}`)))
	assert.NotEqual(t, sig1, CalculateSignature("secret", "100001", "GET", "/capture", []byte(`{"amount":500}`)))
	assert.NotEqual(t, sig1, CalculateSignature("secret", "100001", "POST", "/refund", []byte(`{"amount":500}`)))
	assert.NotEqual(t, sig1, CalculateSignature("secret", "100001", "POST", "/capture", []byte(`{"amount":501}`)))
}

func TestValidateSignature(t *testing.T) {
	body := []byte(`{"payment_token":"tok_1"}`)
	sig := CalculateSignature("secret", "100001", "POST", "/refund", body)

	assert.True(t, ValidateSignature("secret", "100001", "POST", "/refund", body, sig))
	assert.False(t, ValidateSignature("secret", "100001", "POST", "/refund", body, "tampered"))
	assert.False(t, ValidateSignature("wrong", "100001", "POST", "/refund", body, sig))
}

func TestCredentials_Valid(t *testing.T) {
	assert.True(t, Credentials{MerchantID: "m", APIKey: "k", APISecret: "s"}.Valid())
	assert.False(t, Credentials{MerchantID: "m", APIKey: "k"}.Valid())
	assert.False(t, Credentials{}.Valid())
}

func TestFormatMajorUnits(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{amount: 500, currency: "try", want: "5.00"},
		{amount: 1999, currency: "USD", want: "19.99"},
		{amount: 7, currency: "eur", want: "0.07"},
		{amount: 0, currency: "usd", want: "0.00"},
		{amount: 500, currency: "jpy", want: "500"},
		{amount: 1000, currency: "", want: "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+"_"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMajorUnits(tt.amount, tt.currency))
		})
	}
}
