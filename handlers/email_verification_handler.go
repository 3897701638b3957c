// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/crypto"
	"aventrada-server/db"
	"aventrada-server/middlewares"
	"aventrada-server/models"
	"aventrada-server/registrations"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	verificationTTL      = 24 * time.Hour
	verificationCooldown = 5 * time.Minute
)

// sendVerificationEmail refreshes the user's open verification token and
// dispatches the verification email.
func sendVerificationEmail(c echo.Context, user *models.User) error {
	token, err := crypto.GenerateRandomString("evt_", 32, "hex")
	if err != nil {
		return err
	}

	verification := models.EmailVerification{}
	if err := db.Conn.WithContext(c.Request().Context()).
		Where("user_id = ? AND is_used = ?", user.ID, false).
		Assign(models.EmailVerification{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: time.Now().Add(verificationTTL),
		}).FirstOrCreate(&verification).Error; err != nil {
		return err
	}

	verifyLink := commons.GetEnv("EMAIL_VERIFICATION_URL", siteURL()+"/verify-email") + "?token=" + url.QueryEscape(token)
	dispatchEmail(c.Logger(), user.Email, user.FullName, "Verify your Aventrada email", "verification", map[string]any{
		"verification_url": verifyLink,
		"expires_in":       "24 hours",
	})
	return nil
}

// SendVerificationEmailHandler godoc
// @Summary      Send verification email
// @Description  Sends a verification email to the user's registered email address
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} GenericResponse "Verification email sent successfully"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      409 {object} GenericResponse "Email already verified"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/send-verification-email [post]
func SendVerificationEmailHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	if user.IsEmailVerified {
		logger.Info("User email is already verified")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "Email is already verified",
		}
	}

	if err := sendVerificationEmail(c, user); err != nil {
		logger.Errorf("Failed to issue verification token: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Verification email sent to user %d.", user.ID)
	return c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Verification email sent successfully",
	})
}

// ResendVerificationEmailHandler godoc
// @Summary      Resend verification email
// @Description  Resends the verification email, at most once every 5 minutes
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} GenericResponse "Verification email resent successfully"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      409 {object} GenericResponse "Email already verified"
// @Failure      429 {object} GenericResponse "Too many requests"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/resend-verification-email [post]
func ResendVerificationEmailHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var recent int64
	if err := db.Conn.WithContext(c.Request().Context()).Model(&models.EmailVerification{}).
		Where("user_id = ? AND updated_at > ?", user.ID, time.Now().Add(-verificationCooldown)).
		Count(&recent).Error; err != nil {
		logger.Errorf("Failed to check recent verification emails: %v", err)
		return echo.ErrInternalServerError
	}
	if recent > 0 && !user.IsEmailVerified {
		logger.Info("Recent verification email already sent")
		return &echo.HTTPError{
			Code:    http.StatusTooManyRequests,
			Message: "Please wait 5 minutes before requesting another verification email",
		}
	}

	return SendVerificationEmailHandler(c)
}

// VerifyEmailHandler godoc
// @Summary      Verify email address
// @Description  Verifies the user's email address using the token sent via email. When APPROVE_ON_EMAIL_VERIFICATION is enabled the registration is approved too.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        verifyEmailRequest  body  VerifyEmailRequest  true  "Email verification request"
// @Success      200 {object} GenericResponse "Email verified successfully"
// @Failure      400 {object} GenericResponse "Bad request or invalid token"
// @Failure      410 {object} GenericResponse "Token expired"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/verify-email [post]
func VerifyEmailHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid verification request payload:", err)
		return echo.ErrBadRequest
	}

	if req.Token == "" {
		logger.Error("Verification token is required")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "token field is required",
		}
	}

	verification := models.EmailVerification{}
	if err := db.Conn.WithContext(ctx).Preload("User").
		Where("token = ? AND is_used = ?", req.Token, false).
		First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Invalid or already used verification token")
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "Invalid or already used verification token",
			}
		}
		logger.Errorf("Failed to find verification record: %v", err)
		return echo.ErrInternalServerError
	}

	if time.Now().After(verification.ExpiresAt) {
		logger.Error("Verification token has expired")
		return &echo.HTTPError{
			Code:    http.StatusGone,
			Message: "Verification token has expired. Please request a new one.",
		}
	}

	approve := commons.GetEnvBool("APPROVE_ON_EMAIL_VERIFICATION", false)

	var approved *models.Registration
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Update("is_used", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", verification.UserID).
			Update("is_email_verified", true).Error; err != nil {
			return err
		}
		if !approve {
			return nil
		}

		reg, changed, err := registrations.Approve(ctx, tx, verification.User.Email, true)
		if err != nil {
			return err
		}
		if changed {
			approved = reg
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Failed to verify email: %v", err)
		return echo.ErrInternalServerError
	}

	if approved != nil {
		sendApprovalEmail(logger, approved)
	}

	logger.Infof("Email verified successfully for user %d", verification.UserID)
	return c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Email verified successfully",
	})
}
