package paytr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Credentials authenticate the merchant against the PayTR API.
// They are loaded from a secret manager or the environment, never from source.
type Credentials struct {
	MerchantID string `json:"merchant_id"`
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
}

// Valid reports whether every credential field is set
func (c Credentials) Valid() bool {
	return c.MerchantID != "" && c.APIKey != "" && c.APISecret != ""
}

const (
	headerMerchantID = "X-PayTR-Merchant-Id"
	headerAPIKey     = "X-PayTR-Api-Key"
	headerSignature  = "X-PayTR-Signature"
)

// CalculateSignature signs a PayTR request.
// Signature = base64(HMAC-SHA256(merchantID + method + path + body, apiSecret))
func CalculateSignature(apiSecret, merchantID, method, path string, body []byte) string {
	h := hmac.New(sha256.New, []byte(apiSecret))
	h.Write([]byte(merchantID))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateSignature checks a signature in constant time
func ValidateSignature(apiSecret, merchantID, method, path string, body []byte, signature string) bool {
	expected := CalculateSignature(apiSecret, merchantID, method, path, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
