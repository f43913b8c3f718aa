package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// remoteError covers the two error body shapes we meet: our own
// {"error":{"code","message"}} envelope and the gateway style
// {"error":{"code","description"}}.
type remoteError struct {
	Error *struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		Description string `json:"description"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and turns it
// into an AppError named after the remote system.
func ParseResponseError(resp *http.Response, remote string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned %d (body unreadable: %w)", remote, resp.StatusCode, err)
	}

	code, msg := "", strings.TrimSpace(string(raw))
	var parsed remoteError
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
		code = parsed.Error.Code
		msg = parsed.Error.Message
		if msg == "" {
			msg = parsed.Error.Description
		}
	}
	return classify(resp.StatusCode, code, remote+": "+msg)
}

func classify(status int, code, msg string) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(msg)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: status, Err: apperrors.ErrNotFound}
	case http.StatusConflict:
		return apperrors.Conflict(msg)
	case http.StatusGone:
		return apperrors.Gone(msg)
	case http.StatusServiceUnavailable:
		return apperrors.Unavailable(msg)
	}
	if status >= 500 {
		return fmt.Errorf("%s (status %d, code %q)", msg, status, code)
	}
	if code == "" {
		code = "REMOTE_ERROR"
	}
	return &apperrors.AppError{Code: code, Message: msg, Status: status}
}

// IsClientError reports a 4xx status.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
