package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dakshrana205/StudyNotionnew/internal/notification"
	"github.com/dakshrana205/StudyNotionnew/pkg/httpclient"
)

// Config holds the API key and the sender identity.
type Config struct {
	BaseURL  string
	APIKey   string
	From     string
	FromName string
}

// Sender posts messages to the SendGrid v3 mail API.
type Sender struct {
	http   httpclient.Doer
	cfg    Config
	logger *slog.Logger
}

// New creates a Sender on top of doer.
func New(doer httpclient.Doer, cfg Config, logger *slog.Logger) *Sender {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Sender{http: doer, cfg: cfg, logger: logger}
}

// Name returns "sendgrid".
func (s *Sender) Name() string { return "sendgrid" }

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// Send posts msg to /v3/mail/send. SendGrid answers 202 on acceptance.
func (s *Sender) Send(ctx context.Context, msg notification.Message) error {
	payload, err := json.Marshal(mailRequest{
		Personalizations: []personalization{{To: []address{{Email: msg.To}}}},
		From:             address{Email: s.cfg.From, Name: s.cfg.FromName},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.Body}},
	})
	if err != nil {
		return s.fail(msg, fmt.Errorf("encode mail request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return s.fail(msg, fmt.Errorf("build mail request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(ctx, req)
	if err != nil {
		return s.fail(msg, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.fail(msg, httpclient.ParseResponseError(resp, "sendgrid"))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	s.logger.DebugContext(ctx, "mail accepted",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("message_id", resp.Header.Get("X-Message-Id")),
	)
	return nil
}

func (s *Sender) fail(msg notification.Message, err error) error {
	return &notification.DeliveryError{Sender: s.Name(), To: msg.To, Err: err}
}
