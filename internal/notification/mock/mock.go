package mock

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dakshrana205/StudyNotionnew/internal/notification"
)

// ErrMockFailure is returned while the sender is set to fail.
var ErrMockFailure = errors.New("mock sender configured to fail")

// Sender logs messages instead of sending them and keeps a copy of each.
type Sender struct {
	logger *slog.Logger

	mu   sync.Mutex
	fail bool
	sent []notification.Message
}

// NewSender creates a mock sender that succeeds.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

// Name returns "mock".
func (s *Sender) Name() string { return "mock" }

// SetFailing makes subsequent sends fail.
func (s *Sender) SetFailing(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

// Send records msg, or fails with a DeliveryError.
func (s *Sender) Send(ctx context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return &notification.DeliveryError{Sender: s.Name(), To: msg.To, Err: ErrMockFailure}
	}
	s.sent = append(s.sent, msg)

	s.logger.InfoContext(ctx, "mock sender: mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Sent returns a copy of every delivered message.
func (s *Sender) Sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Message, len(s.sent))
	copy(out, s.sent)
	return out
}
