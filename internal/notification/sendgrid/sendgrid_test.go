package sendgrid

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

	"github.com/dakshrana205/StudyNotionnew/internal/notification"
	"github.com/dakshrana205/StudyNotionnew/pkg/httpclient"
)

func newTestSender(t *testing.T, h http.HandlerFunc) *Sender {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second

	return New(httpclient.NewWithHTTPClient(srv.Client(), cfg),
		Config{BaseURL: srv.URL, APIKey: "SG.test", From: "noreply@studynotion.local", FromName: "StudyNotion"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSend(t *testing.T) {
	s := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))

		var body mailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Personalizations, 1)
		assert.Equal(t, "asha@example.com", body.Personalizations[0].To[0].Email)
		assert.Equal(t, "noreply@studynotion.local", body.From.Email)
		assert.Equal(t, "Payment Received", body.Subject)
		assert.Equal(t, "text/html", body.Content[0].Type)

		w.WriteHeader(http.StatusAccepted)
	})

	err := s.Send(context.Background(), notification.Message{To: "asha@example.com", Subject: "Payment Received", Body: "<p>ok</p>"})
	require.NoError(t, err)
}

func TestSend_RejectedIsDeliveryError(t *testing.T) {
	s := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Does not contain a valid address."}]}`))
	})

	err := s.Send(context.Background(), notification.Message{To: "not-an-address"})
	require.Error(t, err)

	var delivery *notification.DeliveryError
	require.True(t, errors.As(err, &delivery))
	assert.Equal(t, "sendgrid", delivery.Sender)
	assert.Equal(t, "not-an-address", delivery.To)
}

func TestSend_TransportFailure(t *testing.T) {
	s := newTestSender(t, func(http.ResponseWriter, *http.Request) {})
	s.cfg.BaseURL = "http://127.0.0.1:1"

	err := s.Send(context.Background(), notification.Message{To: "asha@example.com"})

	var delivery *notification.DeliveryError
	assert.True(t, errors.As(err, &delivery))
}
