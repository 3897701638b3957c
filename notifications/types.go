// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"time"
)

type NotificationTypes string

const (
	Email NotificationTypes = "EMAIL"
)

type NotificationProviders string

const (
	// Auto tries the primary provider, then the fallback.
	Auto      NotificationProviders = ""
	Mailgun   NotificationProviders = "mailgun"
	ZeptoMail NotificationProviders = "zepto_mail"
	SMTP      NotificationProviders = "smtp"
	Mock      NotificationProviders = "mock"
)

// KnownProviders is the display order used by diagnostics.
var KnownProviders = []NotificationProviders{Mailgun, ZeptoMail, SMTP, Mock}

type NotificationData struct {
	To        string         `json:"to"`
	ToName    *string        `json:"to_name,omitempty"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables,omitempty"`
}

// OutgoingEmail is a rendered message ready for a provider.
type OutgoingEmail struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	HTML     string
}

// EmailProvider sends one rendered email and returns the provider's message id.
type EmailProvider interface {
	Send(ctx context.Context, email OutgoingEmail) (string, error)
}

type DeliveryResult struct {
	Provider  NotificationProviders
	MessageID string
	Attempts  int
}

type ProviderStatus struct {
	Name       NotificationProviders `json:"name"`
	Configured bool                  `json:"configured"`
	Role       string                `json:"role,omitempty"`
}

// EmailJob is the queued form of an asynchronous email.
type EmailJob struct {
	ID        string                `json:"id"`
	Provider  NotificationProviders `json:"provider,omitempty"`
	Data      NotificationData      `json:"data"`
	CreatedAt time.Time             `json:"created_at"`
}

// JobPublisher hands email jobs to a durable queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type ZeptoMailRequest struct {
	From     ZeptoMailAddress     `json:"from"`
	To       []ZeptoMailRecipient `json:"to"`
	Subject  string               `json:"subject"`
	HTMLBody string               `json:"htmlbody"`
	ReplyTo  []ZeptoMailAddress   `json:"reply_to,omitempty"`
}

type ZeptoMailRecipient struct {
	EmailAddress ZeptoMailAddress `json:"email_address"`
}

type ZeptoMailAddress struct {
	Address string  `json:"address"`
	Name    *string `json:"name,omitempty"`
}

type ZeptoMailResponse struct {
	Data      []ZeptoMailData `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Object    string          `json:"object,omitempty"`
	Error     *ZeptoMailError `json:"error,omitempty"`
}

type ZeptoMailData struct {
	Code           string              `json:"code"`
	AdditionalInfo []map[string]string `json:"additional_info,omitempty"`
	Message        string              `json:"message"`
}

type ZeptoMailError struct {
	Code      string                 `json:"code,omitempty"`
	Details   []ZeptoMailErrorDetail `json:"details,omitempty"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
}

type ZeptoMailErrorDetail struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Target      string `json:"target"`
	TargetValue string `json:"target_value,omitempty"`
}
