// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/db"
	"aventrada-server/models"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const maxContactBodyLength = 5000

// ContactHandler godoc
// @Summary      Send a contact message
// @Description  Stores a message from the public contact form.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contactRequest  body  ContactRequest  true  "Contact form payload"
// @Success      201 {object} GenericResponse "Message received"
// @Failure      400 {object} GenericResponse "Bad request, missing or invalid fields"
// @Failure      429 {object} GenericResponse "Too many requests"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/contact [post]
func ContactHandler(c echo.Context) error {
	logger := c.Logger()

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid contact request payload:", err)
		return echo.ErrBadRequest
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Body = strings.TrimSpace(req.Body)

	if req.Name == "" {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "name field is required"}
	}
	if req.Body == "" {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "message field is required"}
	}
	if len(req.Body) > maxContactBodyLength {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "message is too long"}
	}
	if err := commons.ValidateEmail(req.Email); err != nil {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Please provide a valid email address"}
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   commons.NormalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Body:    req.Body,
	}
	if err := db.Conn.WithContext(c.Request().Context()).Create(&msg).Error; err != nil {
		logger.Errorf("Failed to store contact message: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Contact message %d received", msg.ID)
	return c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "Thanks for reaching out, we'll get back to you soon"})
}

// ListContactMessagesHandler godoc
// @Summary      List contact messages
// @Description  Returns contact form messages, newest first.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page       query  int  false  "Page number (default 1)"
// @Param        page_size  query  int  false  "Page size (default 20, max 100)"
// @Success      200 {object} ContactMessageListResponse "Paginated contact messages"
// @Failure      401 {object} GenericResponse            "Unauthorized"
// @Failure      403 {object} GenericResponse            "Admin access required"
// @Failure      500 {object} GenericResponse            "Internal server error"
// @Router       /v1/admin/contact-messages [get]
func ListContactMessagesHandler(c echo.Context) error {
	logger := c.Logger()
	page, pageSize := parsePagination(c)
	conn := db.Conn.WithContext(c.Request().Context())

	var total int64
	if err := conn.Model(&models.ContactMessage{}).Count(&total).Error; err != nil {
		logger.Errorf("Failed to count contact messages: %v", err)
		return echo.ErrInternalServerError
	}

	var messages []models.ContactMessage
	if err := conn.Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&messages).Error; err != nil {
		logger.Errorf("Failed to fetch contact messages: %v", err)
		return echo.ErrInternalServerError
	}

	data := make([]ContactMessageDetails, 0, len(messages))
	for _, m := range messages {
		data = append(data, ContactMessageDetails{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Subject:   m.Subject,
			Body:      m.Body,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, ContactMessageListResponse{
		Success:    true,
		Message:    "Contact messages retrieved successfully",
		Data:       data,
		Pagination: paginationDetails(page, pageSize, total),
	})
}
