package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseResponseError_GatewayShape(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadRequest,
		`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least INR 1.00"}}`), "razorpay")

	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "razorpay: amount must be at least INR 1.00", appErr.Message)
}

func TestParseResponseError_EnvelopeShape(t *testing.T) {
	err := ParseResponseError(response(http.StatusConflict,
		`{"error":{"code":"CONFLICT","message":"duplicate receipt"}}`), "razorpay")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestParseResponseError_Statuses(t *testing.T) {
	tests := []struct {
		status int
		kind   error
	}{
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
	}
	for _, tt := range tests {
		err := ParseResponseError(response(tt.status, "nope"), "sendgrid")
		assert.ErrorIs(t, err, tt.kind, "status %d", tt.status)
	}
}

func TestParseResponseError_ServerErrorIsPlain(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadGateway, "upstream died"), "sendgrid")

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "sendgrid: upstream died")
	assert.Contains(t, err.Error(), "502")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(404))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
