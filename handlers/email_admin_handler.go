// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/db"
	"aventrada-server/models"
	"aventrada-server/notifications"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var errSenderUnavailable = &echo.HTTPError{
	Code:    http.StatusServiceUnavailable,
	Message: "Email sender is not initialized",
}

// EmailProvidersHandler godoc
// @Summary      Email provider status
// @Description  Lists the email providers, whether each is configured and which are used as primary and fallback.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} EmailProvidersResponse "Provider status"
// @Failure      401 {object} GenericResponse        "Unauthorized"
// @Failure      403 {object} GenericResponse        "Admin access required"
// @Failure      503 {object} GenericResponse        "Email sender is not initialized"
// @Router       /v1/admin/emails/providers [get]
func EmailProvidersHandler(c echo.Context) error {
	sender := notifications.Default
	if sender == nil {
		return errSenderUnavailable
	}

	return c.JSON(http.StatusOK, EmailProvidersResponse{
		Success:   true,
		Message:   "Email providers retrieved successfully",
		Providers: sender.ProviderStatuses(),
		Primary:   string(sender.Primary),
		Fallback:  string(sender.Fallback),
		MockMode:  sender.ForceMock,
		Queued:    notifications.Queue != nil,
	})
}

// SendTestEmailHandler godoc
// @Summary      Send a test email
// @Description  Sends a test email synchronously through the given provider, or through the automatic chain when none is given.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        testEmailRequest  body  TestEmailRequest  true  "Test email payload"
// @Success      200 {object} TestEmailResponse "Test email sent"
// @Failure      400 {object} GenericResponse   "Bad request or unknown provider"
// @Failure      401 {object} GenericResponse   "Unauthorized"
// @Failure      403 {object} GenericResponse   "Admin access required"
// @Failure      502 {object} GenericResponse   "Every provider failed"
// @Failure      503 {object} GenericResponse   "Email sender is not initialized"
// @Router       /v1/admin/emails/test [post]
func SendTestEmailHandler(c echo.Context) error {
	logger := c.Logger()

	sender := notifications.Default
	if sender == nil {
		return errSenderUnavailable
	}

	var req TestEmailRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid test email payload:", err)
		return echo.ErrBadRequest
	}

	if err := commons.ValidateEmail(req.To); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "to must be a valid email address",
		}
	}

	provider := notifications.NotificationProviders(strings.ToLower(strings.TrimSpace(req.Provider)))
	if provider == "auto" {
		provider = notifications.Auto
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Aventrada test email"
	}

	label := string(provider)
	if provider == notifications.Auto {
		label = "automatic"
	}

	result, err := sender.Send(c.Request().Context(), notifications.NotificationData{
		To:       commons.NormalizeEmail(req.To),
		Subject:  subject,
		Template: "test_email",
		Variables: map[string]any{
			"provider": label,
			"sent_at":  time.Now().UTC().Format(time.RFC1123),
		},
	}, provider)
	if errors.Is(err, notifications.ErrUnsupportedProvider) || errors.Is(err, notifications.ErrProviderNotConfigured) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}
	if err != nil {
		logger.Errorf("Test email failed: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Email delivery failed: " + err.Error(),
		}
	}

	return c.JSON(http.StatusOK, TestEmailResponse{
		Success:   true,
		Message:   "Test email sent",
		Provider:  string(result.Provider),
		MessageID: result.MessageID,
		Attempts:  result.Attempts,
	})
}

// ListEmailLogsHandler godoc
// @Summary      List email delivery logs
// @Description  Returns one row per delivery attempt, newest first.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        provider   query  string  false  "Filter by provider"
// @Param        status     query  string  false  "SENT or FAILED"
// @Param        to         query  string  false  "Filter by recipient"
// @Param        page       query  int     false  "Page number (default 1)"
// @Param        page_size  query  int     false  "Page size (default 20, max 100)"
// @Success      200 {object} EmailLogListResponse "Paginated email logs"
// @Failure      401 {object} GenericResponse      "Unauthorized"
// @Failure      403 {object} GenericResponse      "Admin access required"
// @Failure      500 {object} GenericResponse      "Internal server error"
// @Router       /v1/admin/emails/logs [get]
func ListEmailLogsHandler(c echo.Context) error {
	logger := c.Logger()
	page, pageSize := parsePagination(c)

	query := db.Conn.WithContext(c.Request().Context()).Model(&models.EmailLog{})
	if provider := strings.TrimSpace(c.QueryParam("provider")); provider != "" {
		query = query.Where("provider = ?", strings.ToLower(provider))
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("recipient = ?", commons.NormalizeEmail(to))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("Failed to count email logs: %v", err)
		return echo.ErrInternalServerError
	}

	var logs []models.EmailLog
	if err := query.Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&logs).Error; err != nil {
		logger.Errorf("Failed to fetch email logs: %v", err)
		return echo.ErrInternalServerError
	}

	data := make([]EmailLogDetails, 0, len(logs))
	for _, l := range logs {
		data = append(data, EmailLogDetails{
			ID:        l.EID,
			Provider:  l.Provider,
			To:        l.To,
			Subject:   l.Subject,
			Template:  l.Template,
			Status:    string(l.Status),
			MessageID: l.MessageID,
			Error:     l.Error,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, EmailLogListResponse{
		Success:    true,
		Message:    "Email logs retrieved successfully",
		Data:       data,
		Pagination: paginationDetails(page, pageSize, total),
	})
}
