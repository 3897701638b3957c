// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/crypto"
	"aventrada-server/db"
	"aventrada-server/middlewares"
	"aventrada-server/models"
	"aventrada-server/passwordcheck"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ChangePasswordHandler godoc
// @Summary      Change user password
// @Description  Changes the authenticated user's password after validating the current one, and signs out every other session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        changePasswordRequest  body  ChangePasswordRequest  true  "Current and new password"
// @Success      200 {object} GenericResponse "Password changed successfully"
// @Failure      400 {object} GenericResponse "Bad request, missing fields or weak password"
// @Failure      401 {object} GenericResponse "Unauthorized, invalid current password or session"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/change-password [post]
func ChangePasswordHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid change password request payload:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request payload, please ensure it is well-formed and has content-type application/json header",
		}
	}

	if req.CurrentPassword == "" {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "current_password field is required"}
	}
	if req.NewPassword == "" {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "new_password field is required"}
	}

	newCrypto := crypto.NewCrypto()
	if err := newCrypto.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		logger.Error("Current password verification failed.")
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Current password is incorrect, please check your password",
		}
	}

	if req.NewPassword == req.CurrentPassword {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "New password must be different from the current password",
		}
	}

	if err := passwordcheck.ValidatePassword(c.Request().Context(), req.NewPassword); err != nil {
		logger.Error("New password validation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid new password: " + err.Error(),
		}
	}

	hashed, err := newCrypto.HashPassword(req.NewPassword)
	if err != nil {
		logger.Errorf("Failed to hash new password: %v", err)
		return echo.ErrInternalServerError
	}

	current, _ := c.Get("session").(models.Session)
	err = db.Conn.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id <> ?", user.ID, current.ID).Delete(&models.Session{}).Error
	})
	if err != nil {
		logger.Errorf("Failed to update password: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Password changed for user %d", user.ID)
	return c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}
