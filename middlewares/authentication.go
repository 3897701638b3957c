// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"aventrada-server/commons"
	"aventrada-server/crypto"
	"aventrada-server/db"
	"aventrada-server/models"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type AuthMethod int

const (
	AuthMethodSession AuthMethod = iota
	AuthMethodAdminKey
)

var errUnauthorized = &echo.HTTPError{
	Code:    http.StatusUnauthorized,
	Message: "Invalid or expired authentication token, please login again",
}

func VerifyAuthMiddleware(authMethods ...AuthMethod) echo.MiddlewareFunc {
	if len(authMethods) == 0 {
		authMethods = []AuthMethod{AuthMethodSession}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := c.Logger()

			authHeader := c.Request().Header.Get("Authorization")
			bearer, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || bearer == "" {
				logger.Error("Authorization header missing or invalid.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Bearer token is required",
				}
			}

			if slices.Contains(authMethods, AuthMethodAdminKey) {
				adminKey := commons.GetEnv("ADMIN_API_KEY")
				if adminKey != "" && crypto.SecureCompare(bearer, adminKey) {
					c.Set("auth_method", AuthMethodAdminKey)
					return next(c)
				}
			}

			if slices.Contains(authMethods, AuthMethodSession) {
				session, err := lookupSession(bearer)
				if err == nil {
					now := time.Now()
					session.LastUsedAt = &now
					if err := db.Conn.Model(session).Update("last_used_at", now).Error; err != nil {
						logger.Error("Failed to update session LastUsedAt: ", err)
					}

					c.Set("session", *session)
					c.Set("auth_method", AuthMethodSession)
					return next(c)
				}
				logger.Debugf("Session authentication failed: %v", err)
			}

			logger.Error("Authentication failed.")
			return errUnauthorized
		}
	}
}

func lookupSession(tokenString string) (*models.Session, error) {
	claims, err := ParseSessionToken(tokenString)
	if err != nil {
		return nil, err
	}

	session := models.Session{}
	err = db.Conn.Where("id = ? AND user_id = ? AND token = ?", claims.SessionID, claims.UserID, claims.ID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, errors.New("session expired")
	}
	return &session, nil
}

// RequireAdmin must run after VerifyAuthMiddleware. It admits the admin API
// key and sessions whose user holds the admin role.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := c.Logger()

		if c.Get("auth_method") == AuthMethodAdminKey {
			return next(c)
		}

		user, err := GetAuthenticatedUser(c)
		if err != nil {
			logger.Error("Failed to get authenticated user:", err)
			return errUnauthorized
		}

		if !user.IsAdmin() && !IsAdminEmail(user.Email) {
			logger.Warnf("User %d attempted an admin operation.", user.ID)
			return &echo.HTTPError{
				Code:    http.StatusForbidden,
				Message: "Admin access required",
			}
		}

		c.Set("user", *user)
		return next(c)
	}
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func IsAdminEmail(email string) bool {
	email = commons.NormalizeEmail(email)
	for _, admin := range commons.GetEnvList("ADMIN_EMAILS") {
		if commons.NormalizeEmail(admin) == email {
			return true
		}
	}
	return false
}

func GetAuthenticatedUser(c echo.Context) (*models.User, error) {
	if user, ok := c.Get("user").(models.User); ok {
		return &user, nil
	}

	if c.Get("auth_method") != AuthMethodSession {
		return nil, errors.New("no authenticated user found")
	}

	session, ok := c.Get("session").(models.Session)
	if !ok {
		return nil, errors.New("no authenticated user found")
	}

	var user models.User
	if err := db.Conn.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		return nil, err
	}
	c.Set("user", user)
	return &user, nil
}
