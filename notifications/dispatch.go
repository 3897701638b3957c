// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"aventrada-server/commons"
	"aventrada-server/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnsupportedProvider   = errors.New("unsupported email provider")
	ErrProviderNotConfigured = errors.New("email provider is not configured")
	ErrUnknownTemplate       = errors.New("unknown email template")
	ErrSenderNotInitialized  = errors.New("email sender is not initialized")
)

const sendTimeout = 30 * time.Second

var (
	// Default is the process-wide sender used by DispatchNotification.
	Default *Sender
	// Queue, when set, receives email jobs instead of sending in-process.
	Queue JobPublisher
)

type Sender struct {
	Providers map[NotificationProviders]EmailProvider
	Primary   NotificationProviders
	Fallback  NotificationProviders
	From      string
	FromName  string
	ForceMock bool
	DB        *gorm.DB

	wg sync.WaitGroup
}

func NewSenderFromEnv(conn *gorm.DB) *Sender {
	s := &Sender{
		Providers: map[NotificationProviders]EmailProvider{Mock: MockEmailClient{}},
		Primary:   NotificationProviders(commons.GetEnv("EMAIL_PROVIDER", string(Mailgun))),
		Fallback:  NotificationProviders(commons.GetEnv("EMAIL_FALLBACK_PROVIDER", string(SMTP))),
		From:      commons.GetEnv("EMAIL_FROM_ADDRESS", "no-reply@aventrada.com"),
		FromName:  commons.GetEnv("EMAIL_FROM_NAME", "Aventrada"),
		ForceMock: commons.GetEnvBool("MOCK_EMAIL_NOTIFICATIONS", false),
		DB:        conn,
	}

	if c, err := NewMailgunClientFromEnv(); err == nil {
		s.Providers[Mailgun] = c
	} else {
		commons.Logger.Debugf("Mailgun disabled: %v", err)
	}
	if c, err := NewZeptoMailClientFromEnv(); err == nil {
		s.Providers[ZeptoMail] = c
	} else {
		commons.Logger.Debugf("ZeptoMail disabled: %v", err)
	}
	if c, err := NewSMTPClientFromEnv(); err == nil {
		s.Providers[SMTP] = c
	} else {
		commons.Logger.Debugf("SMTP disabled: %v", err)
	}

	if s.ForceMock {
		commons.Logger.Warn("Mock email notifications enabled, all email goes to the mock provider")
	}
	return s
}

func isKnownProvider(p NotificationProviders) bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// chain resolves which providers to try, in order.
func (s *Sender) chain(provider NotificationProviders) ([]NotificationProviders, error) {
	if s.ForceMock {
		return []NotificationProviders{Mock}, nil
	}

	if provider != Auto {
		if !isKnownProvider(provider) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
		}
		if _, ok := s.Providers[provider]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
		}
		return []NotificationProviders{provider}, nil
	}

	var chain []NotificationProviders
	for _, p := range []NotificationProviders{s.Primary, s.Fallback} {
		if p == Auto || (len(chain) > 0 && chain[0] == p) {
			continue
		}
		if _, ok := s.Providers[p]; !ok {
			commons.Logger.Debugf("Skipping unconfigured email provider %q", p)
			continue
		}
		chain = append(chain, p)
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no primary or fallback provider available", ErrProviderNotConfigured)
	}
	return chain, nil
}

// Send renders data and delivers it synchronously, falling back along the
// provider chain. Every attempt is recorded in the email log.
func (s *Sender) Send(ctx context.Context, data NotificationData, provider NotificationProviders) (*DeliveryResult, error) {
	if data.To == "" {
		return nil, errors.New("'to' field is required")
	}
	if data.Subject == "" {
		return nil, errors.New("'subject' field is required")
	}
	if data.Template == "" {
		return nil, errors.New("'template' field is required")
	}

	chain, err := s.chain(provider)
	if err != nil {
		return nil, err
	}

	html, err := RenderTemplate(data.Template, data.Variables)
	if err != nil {
		return nil, err
	}

	email := OutgoingEmail{
		From:     s.From,
		FromName: s.FromName,
		To:       data.To,
		Subject:  data.Subject,
		HTML:     html,
	}
	if data.ToName != nil {
		email.ToName = *data.ToName
	}

	var errs []error
	for i, name := range chain {
		messageID, err := s.Providers[name].Send(ctx, email)
		s.record(ctx, name, data, messageID, err)

		if err == nil {
			commons.Logger.Infof("Email sent:\n- provider=%s\n- message_id=%s", name, messageID)
			return &DeliveryResult{Provider: name, MessageID: messageID, Attempts: i + 1}, nil
		}

		commons.Logger.Warnf("Email provider %s failed: %v", name, err)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	return nil, errors.Join(errs...)
}

func (s *Sender) record(ctx context.Context, provider NotificationProviders, data NotificationData, messageID string, sendErr error) {
	if s.DB == nil {
		return
	}

	entry := models.EmailLog{
		Provider: string(provider),
		To:       data.To,
		Subject:  data.Subject,
		Template: data.Template,
		Status:   models.EmailSent,
	}
	if messageID != "" {
		entry.MessageID = &messageID
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = models.EmailFailed
		entry.Error = &msg
	}

	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		commons.Logger.Errorf("Failed to write email log: %v", err)
	}
}

// ProviderStatuses reports every known provider, whether it is configured
// and the role it plays in the automatic chain.
func (s *Sender) ProviderStatuses() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(KnownProviders))
	for _, name := range KnownProviders {
		_, configured := s.Providers[name]
		status := ProviderStatus{Name: name, Configured: configured}
		switch {
		case s.ForceMock && name == Mock:
			status.Role = "forced"
		case name == s.Primary:
			status.Role = "primary"
		case name == s.Fallback:
			status.Role = "fallback"
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func (s *Sender) sendAsync(data NotificationData, provider NotificationProviders) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if _, err := s.Send(ctx, data, provider); err != nil {
			commons.Logger.Errorf("Failed to deliver email to %s: %v", data.To, err)
		}
	}()
}

// Wait blocks until in-process asynchronous sends have finished.
func (s *Sender) Wait() {
	s.wg.Wait()
}

func DispatchNotification(_type NotificationTypes, provider NotificationProviders, data NotificationData) error {
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	if _type != Email {
		return fmt.Errorf("unsupported notification type: %s", _type)
	}

	if Queue != nil {
		job := EmailJob{
			ID:        uuid.NewString(),
			Provider:  provider,
			Data:      data,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := Queue.PublishJSON(ctx, job); err != nil {
			commons.Logger.Errorf("Failed to queue email job:\n%v", err)
			return err
		}
		commons.Logger.Infof("Email job queued:\n- id=%s\n- template=%s", job.ID, data.Template)
		return nil
	}

	if Default == nil {
		return ErrSenderNotInitialized
	}

	Default.sendAsync(data, provider)
	return nil
}

// HandleEmailJob decodes a queued job and delivers it synchronously.
func HandleEmailJob(ctx context.Context, body []byte) error {
	if Default == nil {
		return ErrSenderNotInitialized
	}

	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid email job: %w", err)
	}

	result, err := Default.Send(ctx, job.Data, job.Provider)
	if err != nil {
		return err
	}

	commons.Logger.Infof("Email job delivered:\n- id=%s\n- provider=%s", job.ID, result.Provider)
	return nil
}
