package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender sends through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	log    *zap.Logger
}

// NewResendSender builds a sender. baseURL is only set in tests.
func NewResendSender(apiKey, baseURL string, log *zap.Logger) (*ResendSender, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client := resend.NewClient(apiKey)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &ResendSender{client: client, log: log.Named("resend")}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	s.log.Info("email sent", zap.String("id", sent.Id), zap.String("subject", msg.Subject))
	return nil
}
