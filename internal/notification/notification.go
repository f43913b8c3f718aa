package notification

import (
	"context"
	"fmt"
)

// Message is a single email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message over one transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// DeliveryError reports a message that did not reach its transport.
type DeliveryError struct {
	Sender string
	To     string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver mail to %s via %s: %v", e.To, e.Sender, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
