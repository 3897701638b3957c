// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"aventrada-server/commons"
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

type MailgunClient struct {
	mg mailgun.Mailgun
}

func NewMailgunClientFromEnv() (*MailgunClient, error) {
	domain := commons.GetEnv("MAILGUN_DOMAIN")
	apiKey := commons.GetEnv("MAILGUN_API_KEY")
	if domain == "" || apiKey == "" {
		return nil, fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY environment variables must be set")
	}
	return NewMailgunClient(domain, apiKey, commons.GetEnv("MAILGUN_API_BASE")), nil
}

func NewMailgunClient(domain, apiKey, apiBase string) *MailgunClient {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunClient{mg: mg}
}

func (c *MailgunClient) Send(ctx context.Context, email OutgoingEmail) (string, error) {
	commons.Logger.Debug("Sending email via Mailgun")

	from := email.From
	if email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", email.FromName, email.From)
	}

	m := c.mg.NewMessage(from, email.Subject, "", email.To)
	m.SetHtml(email.HTML)

	_, id, err := c.mg.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("mailgun send failed: %w", err)
	}
	return id, nil
}
