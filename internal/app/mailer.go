package app

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultEmailBaseURL = "https://api.resend.com"

// Mailer sends one transactional email. Implementations must be safe for
// concurrent use; the dispatcher fires sends in parallel.
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

type MailerOptions struct {
	APIKey  string
	BaseURL string // override for tests; defaults to the provider endpoint
}

type restMailer struct {
	client *resty.Client
}

// NewMailer returns a Mailer backed by the provider's REST API.
func NewMailer(opts MailerOptions) Mailer {
	base := opts.BaseURL
	if base == "" {
		base = defaultEmailBaseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")
	return &restMailer{client: client}
}

func (m *restMailer) Send(ctx context.Context, msg *EmailMessage) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email provider returned %d: %s",
			resp.StatusCode(), truncate(resp.String(), maxErrorDetailLen))
	}
	return nil
}
