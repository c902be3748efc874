// Package mail delivers composed messages through SMTP or the Resend API.
package mail

import (
	"context"
	"log/slog"
	"strings"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	From        string
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
	ProviderID() string
}

// NoopSender logs instead of sending. Used for local runs without a mail relay.
type NoopSender struct {
	logger *slog.Logger
}

func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (s *NoopSender) ProviderID() string {
	return "noop"
}

func (s *NoopSender) Send(ctx context.Context, msg Message) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "email suppressed",
			"to", strings.Join(msg.To, ","),
			"subject", msg.Subject,
			"attachments", len(msg.Attachments),
		)
	}
	return nil
}
