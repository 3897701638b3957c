// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"aventrada-server/commons"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const defaultZeptoMailAPIURL = "https://api.zeptomail.com/v1.1/email"

type MockEmailClient struct{}

func (MockEmailClient) Send(ctx context.Context, email OutgoingEmail) (string, error) {
	commons.Logger.Info("=== MOCK EMAIL NOTIFICATION ===")
	commons.Logger.Infof("From: %s <%s>", email.FromName, email.From)
	commons.Logger.Infof("To: %s", email.To)
	if email.ToName != "" {
		commons.Logger.Infof("To Name: %s", email.ToName)
	}
	commons.Logger.Infof("Subject: %s", email.Subject)
	commons.Logger.Debugf("Body:\n%s", email.HTML)
	commons.Logger.Info("=== EMAIL MOCK COMPLETE ===")

	return "mock-" + uuid.NewString(), nil
}

type SMTPClient struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewSMTPClientFromEnv() (*SMTPClient, error) {
	smtpHost := commons.GetEnv("SMTP_HOST")
	if smtpHost == "" {
		return nil, fmt.Errorf("SMTP_HOST environment variable is not set")
	}

	smtpPort := commons.GetEnv("SMTP_PORT", "587")
	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %s", smtpPort)
	}

	return &SMTPClient{
		Host:     smtpHost,
		Port:     port,
		Username: commons.GetEnv("SMTP_USERNAME"),
		Password: commons.GetEnv("SMTP_PASSWORD"),
	}, nil
}

func (c *SMTPClient) Send(ctx context.Context, email OutgoingEmail) (string, error) {
	commons.Logger.Debug("Sending email via SMTP")

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain(email.From))

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(email.From, email.FromName))
	message.SetHeader("To", message.FormatAddress(email.To, email.ToName))
	message.SetHeader("Subject", email.Subject)
	message.SetHeader("Message-ID", messageID)
	message.SetBody("text/html", email.HTML)

	dialer := gomail.NewDialer(c.Host, c.Port, c.Username, c.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: c.Host,
	}

	if err := dialer.DialAndSend(message); err != nil {
		return "", fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	return messageID, nil
}

func messageIDDomain(from string) string {
	if _, domain, ok := strings.Cut(from, "@"); ok && domain != "" {
		return domain
	}
	return "localhost"
}

type ZeptoMailClient struct {
	APIURL     string
	Token      string
	HTTPClient *http.Client
}

func NewZeptoMailClientFromEnv() (*ZeptoMailClient, error) {
	token := commons.GetEnv("ZEPTOMAIL_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("ZEPTOMAIL_TOKEN environment variable is not set")
	}

	return &ZeptoMailClient{
		APIURL:     commons.GetEnv("ZEPTOMAIL_API_URL", defaultZeptoMailAPIURL),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *ZeptoMailClient) Send(ctx context.Context, email OutgoingEmail) (string, error) {
	commons.Logger.Debug("Sending email via ZeptoMail")

	payload := ZeptoMailRequest{
		From:     ZeptoMailAddress{Address: email.From, Name: optional(email.FromName)},
		To:       []ZeptoMailRecipient{{EmailAddress: ZeptoMailAddress{Address: email.To, Name: optional(email.ToName)}}},
		Subject:  email.Subject,
		HTMLBody: email.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode ZeptoMail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	token := c.Token
	if !strings.HasPrefix(token, "Zoho-enczapikey") {
		token = "Zoho-enczapikey " + token
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ZeptoMail request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read ZeptoMail response: %w", err)
	}

	var result ZeptoMailResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return "", fmt.Errorf("invalid ZeptoMail response (status %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if result.Error != nil {
			return "", fmt.Errorf("ZeptoMail error %s: %s", result.Error.Code, result.Error.Message)
		}
		return "", fmt.Errorf("ZeptoMail returned status %d", resp.StatusCode)
	}

	if result.RequestID == "" {
		return "", errors.New("ZeptoMail response missing request_id")
	}
	return result.RequestID, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
