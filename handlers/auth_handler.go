// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/crypto"
	"aventrada-server/db"
	"aventrada-server/middlewares"
	"aventrada-server/models"
	"aventrada-server/passwordcheck"
	"aventrada-server/registrations"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const sessionTTL = 30 * 24 * time.Hour

func createSession(c echo.Context, user models.User) (string, error) {
	logger := c.Logger()

	sessionToken, err := crypto.GenerateRandomString("st_long_", 32, "hex")
	if err != nil {
		logger.Errorf("Failed to generate session token: %v", err)
		return "", err
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)
	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	session := models.Session{
		Token:      sessionToken,
		IPAddress:  &ipAddress,
		UserAgent:  &userAgent,
		LastUsedAt: &now,
		ExpiresAt:  &expiresAt,
		UserID:     user.ID,
	}
	if err := db.Conn.WithContext(c.Request().Context()).Create(&session).Error; err != nil {
		logger.Errorf("Failed to create session: %v", err)
		return "", err
	}

	tokenString, err := middlewares.SignSessionToken(session.ID, user.ID, sessionToken, expiresAt)
	if err != nil {
		logger.Errorf("Failed to sign token: %v", err)
		return "", err
	}
	return tokenString, nil
}

// initialStatus is the status a registration gets when it is created for a new account.
func initialStatus(user *models.User) models.RegistrationStatus {
	if user.IsAdmin() || commons.GetEnvBool("AUTO_APPROVE_SIGNUPS", false) {
		return models.RegistrationApproved
	}
	return models.RegistrationPending
}

// SignupHandler godoc
// @Summary      Register a new user
// @Description  Creates an account and its registration, then sends a verification email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body  SignupRequest  true  "Signup request payload"
// @Success      201 {object} AuthResponse    "Signup successful"
// @Failure      400 {object} GenericResponse "Bad request, missing or invalid fields"
// @Failure      409 {object} GenericResponse "Duplicate user"
// @Failure      429 {object} GenericResponse "Too many requests"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/signup [post]
func SignupHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid signup request payload:", err)
		return echo.ErrBadRequest
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if err := commons.ValidateEmail(req.Email); err != nil {
		logger.Errorf("Invalid email %q: %v", req.Email, err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Please provide a valid email address",
		}
	}

	if req.Password == "" {
		logger.Error("Password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	if err := passwordcheck.ValidatePassword(ctx, req.Password); err != nil {
		logger.Error("Password validation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Invalid password: %v", err.Error()),
		}
	}

	email := commons.NormalizeEmail(req.Email)

	var count int64
	if err := db.Conn.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Errorf("Failed to check existing user: %v", err)
		return echo.ErrInternalServerError
	}
	if count > 0 {
		logger.Errorf("This email is already registered.")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This email is already registered, please log in instead.",
		}
	}

	hash, err := crypto.NewCrypto().HashPassword(req.Password)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	user := models.User{
		Email:       email,
		Password:    hash,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: commons.NormalizePhoneNumber(req.PhoneNumber, ""),
		Role:        models.RoleUser,
	}
	if middlewares.IsAdminEmail(email) {
		user.Role = models.RoleAdmin
	}

	var reg *models.Registration
	err = db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		var err error
		reg, _, err = registrations.Upsert(ctx, tx, registrations.Input{
			Email:       email,
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			Preferences: req.Preferences,
			Status:      initialStatus(&user),
		})
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		logger.Errorf("This email was registered concurrently: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This email is already registered, please log in instead.",
		}
	}
	if err != nil {
		logger.Errorf("Signup failed: %v", err)
		return echo.ErrInternalServerError
	}

	if err := sendVerificationEmail(c, &user); err != nil {
		logger.Errorf("Failed to send verification email: %v", err)
	}

	token, err := createSession(c, user)
	if err != nil {
		return echo.ErrInternalServerError
	}

	logger.Infof("User %d signed up successfully", user.ID)
	return c.JSON(http.StatusCreated, AuthResponse{
		Success:            true,
		Message:            "Signup successful",
		SessionToken:       token,
		RegistrationStatus: string(reg.Status),
	})
}

// LoginHandler godoc
// @Summary      Login a user
// @Description  Authenticates a user and returns a session token. Users whose registration is still pending are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body  LoginRequest  true  "Login request payload"
// @Success      200 {object} AuthResponse    "Login successful"
// @Failure      400 {object} GenericResponse "Bad request, missing required fields"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      403 {object} GenericResponse "Registration pending approval"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/login [post]
func LoginHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid login request payload:", err)
		return echo.ErrBadRequest
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if req.Password == "" {
		logger.Error("Password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	email := commons.NormalizeEmail(req.Email)

	user := models.User{}
	if err := db.Conn.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User not found.")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Credentials are incorrect, please check your email and password",
			}
		}

		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	if err := crypto.NewCrypto().VerifyPassword(req.Password, user.Password); err != nil {
		logger.Error("Password verification failed.")
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Credentials are incorrect, please check your email and password",
		}
	}

	if crypto.IsLegacyHash(user.Password) {
		if hash, err := crypto.NewCrypto().HashPassword(req.Password); err != nil {
			logger.Errorf("Failed to rehash legacy password: %v", err)
		} else if err := db.Conn.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
			logger.Errorf("Failed to store rehashed password: %v", err)
		} else {
			logger.Infof("Upgraded password hash for user %d", user.ID)
		}
	}

	if !user.IsAdmin() && middlewares.IsAdminEmail(user.Email) {
		if err := db.Conn.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			logger.Errorf("Failed to promote admin user: %v", err)
			return echo.ErrInternalServerError
		}
		user.Role = models.RoleAdmin
		logger.Infof("User %d promoted to admin", user.ID)
	}

	reg, err := registrations.FindByEmail(ctx, db.Conn, user.Email)
	if errors.Is(err, registrations.ErrNotFound) {
		reg, _, err = registrations.Upsert(ctx, db.Conn, registrations.Input{
			Email:       user.Email,
			FullName:    user.FullName,
			PhoneNumber: user.PhoneNumber,
			Status:      initialStatus(&user),
		})
	}
	if err != nil {
		logger.Errorf("Failed to load registration: %v", err)
		return echo.ErrInternalServerError
	}

	if !reg.IsApproved() && !user.IsAdmin() {
		logger.Infof("Login refused for user %d: registration pending", user.ID)
		return &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "Your registration is pending approval. We'll email you as soon as you're in.",
		}
	}

	token, err := createSession(c, user)
	if err != nil {
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Success:            true,
		Message:            "Login successful",
		SessionToken:       token,
		RegistrationStatus: string(reg.Status),
	})
}

// LogoutHandler godoc
// @Summary      Logout
// @Description  Deletes the current session.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} GenericResponse "Logout successful"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/logout [post]
func LogoutHandler(c echo.Context) error {
	logger := c.Logger()

	session, ok := c.Get("session").(models.Session)
	if !ok {
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Current session not found",
		}
	}

	if err := db.Conn.WithContext(c.Request().Context()).Delete(&models.Session{}, session.ID).Error; err != nil {
		logger.Errorf("Failed to delete session: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Session %d logged out", session.ID)
	return c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Logout successful"})
}

// MeHandler godoc
// @Summary      Current user
// @Description  Returns the authenticated user and their registration status.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} MeResponse      "User retrieved successfully"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/me [get]
func MeHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	status := ""
	reg, err := registrations.FindByEmail(c.Request().Context(), db.Conn, user.Email)
	switch {
	case err == nil:
		status = string(reg.Status)
	case !errors.Is(err, registrations.ErrNotFound):
		logger.Errorf("Failed to load registration: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, MeResponse{
		Success: true,
		Message: "User retrieved successfully",
		User: UserDetails{
			ID:              user.ID,
			Email:           user.Email,
			FullName:        user.FullName,
			PhoneNumber:     user.PhoneNumber,
			Role:            string(user.Role),
			IsEmailVerified: user.IsEmailVerified,
			CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		},
		RegistrationStatus: status,
	})
}
