// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/db"
	"aventrada-server/emailcheck"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

// CheckEmailHandler godoc
// @Summary      Check an email address
// @Description  Reports whether a registration and an account exist for the email.
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        emailCheckRequest  body  EmailCheckRequest  true  "Email to check"
// @Success      200 {object} EmailCheckResponse "Email checked"
// @Failure      400 {object} GenericResponse    "Bad request, missing email"
// @Failure      500 {object} GenericResponse    "Internal server error"
// @Router       /v1/emails/check [post]
func CheckEmailHandler(c echo.Context) error {
	logger := c.Logger()

	var req EmailCheckRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid email check payload:", err)
		return echo.ErrBadRequest
	}

	if strings.TrimSpace(req.Email) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	result, err := emailcheck.Exists(c.Request().Context(), db.Conn, req.Email)
	if err != nil {
		logger.Errorf("Failed to check email: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, EmailCheckResponse{
		Success:    true,
		Message:    "Email checked",
		Exists:     result.Exists,
		Registered: result.Registered,
		Status:     string(result.Status),
	})
}

// SimilarEmailsHandler godoc
// @Summary      Find similar email addresses
// @Description  Suggests a corrected domain for common typos and lists registered addresses within a small edit distance.
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        emailSimilarRequest  body  EmailSimilarRequest  true  "Email to compare"
// @Success      200 {object} EmailSimilarResponse "Similar emails"
// @Failure      400 {object} GenericResponse      "Bad request, missing email"
// @Failure      500 {object} GenericResponse      "Internal server error"
// @Router       /v1/emails/similar [post]
func SimilarEmailsHandler(c echo.Context) error {
	logger := c.Logger()

	var req EmailSimilarRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid similar email payload:", err)
		return echo.ErrBadRequest
	}

	if strings.TrimSpace(req.Email) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	result, err := emailcheck.Similar(c.Request().Context(), db.Conn, req.Email, limit)
	if err != nil {
		logger.Errorf("Failed to find similar emails: %v", err)
		return echo.ErrInternalServerError
	}

	similar := result.Similar
	if similar == nil {
		similar = []string{}
	}

	return c.JSON(http.StatusOK, EmailSimilarResponse{
		Success:    true,
		Message:    "Email checked",
		Exists:     result.Exists,
		Suggestion: result.Suggestion,
		Similar:    similar,
	})
}
