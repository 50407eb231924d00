package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedErr struct{ code string }

func (e codedErr) Error() string     { return "coded failure" }
func (e codedErr) ErrorCode() string { return e.code }

func TestWrapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    ErrorCode
		wantMessage string
	}{
		{
			name:        "plain error keeps message and fallback code",
			err:         errors.New("boom"),
			wantCode:    ErrorCodeUnknown,
			wantMessage: "boom",
		},
		{
			name:        "empty message gets default",
			err:         errors.New(""),
			wantCode:    ErrorCodeUnknown,
			wantMessage: DefaultErrorMessage,
		},
		{
			name:        "coder supplies code",
			err:         fmt.Errorf("wrapped: %w", codedErr{code: "CARD_DECLINED"}),
			wantCode:    "CARD_DECLINED",
			wantMessage: "wrapped: coded failure",
		},
		{
			name:        "coder with empty code falls back",
			err:         codedErr{},
			wantCode:    ErrorCodeUnknown,
			wantMessage: "coded failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := WrapError(ErrorCodeUnknown, tt.err)
			require.NotNil(t, pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantMessage, pe.Error())
			assert.ErrorIs(t, pe, tt.err)
		})
	}
}

func TestWrapError_Nil(t *testing.T) {
	assert.Nil(t, WrapError(ErrorCodeUnknown, nil))
}

func TestWrapError_PassesThroughProcessorError(t *testing.T) {
	original := NewProcessorError(ErrorCodeCaptureFailed, "failed to capture payment: declined")
	wrapped := WrapError(ErrorCodeUnknown, fmt.Errorf("outer: %w", original))
	assert.Same(t, original, wrapped)
}

func TestProcessorError_JSON(t *testing.T) {
	pe := NewProcessorError(ErrorCodeCaptureFailed, "failed to capture payment: declined").WithDetail("declined")

	raw, err := json.Marshal(pe)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"failed to capture payment: declined","code":"CAPTURE_FAILED","detail":"declined"}`, string(raw))
}

func TestNewProcessorError_DefaultMessage(t *testing.T) {
	pe := NewProcessorError(ErrorCodeUnknown, "")
	assert.Equal(t, DefaultErrorMessage, pe.Message)
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeSessionNotFound, GetErrorCode(WrapError(ErrorCodeSessionNotFound, ErrSessionNotFound)))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
