package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, errors.New("mail: resend api key is required")
	}
	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

func (s *ResendSender) ProviderID() string {
	return "resend"
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, resendRequest(msg))
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return errors.New("resend: empty response")
	}
	return nil
}

func resendRequest(msg Message) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}
	return req
}
