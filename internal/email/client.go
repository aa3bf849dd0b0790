// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import (
	"context"
	"fmt"
)

// Message is one fully-rendered email. The sender address is fixed by the
// Sender implementation, not by the caller.
type Message struct {
	To      string // recipient email address
	Subject string
	HTML    string
}

// Sender is the interface the results notifier uses to send email.
// Tests inject a stub that records calls without hitting the network.
//
// Implementations must be safe to call concurrently.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// APIError is returned when the provider answers with a non-2xx status or an
// error object. Body holds the raw response so callers can log the
// provider's own diagnostic payload.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Name != "" || e.Message != "" {
		return fmt.Sprintf("email: Resend error %s (status %d): %s", e.Name, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("email: unexpected status %d: %.200s", e.StatusCode, string(e.Body))
}
