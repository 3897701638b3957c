// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aventrada-server/models"
	"aventrada-server/testutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newSession(t *testing.T, conn *gorm.DB, role models.UserRole, ttl time.Duration) string {
	t.Helper()

	user := models.User{Email: string(role) + "@example.com", Password: "x", Role: role}
	require.NoError(t, conn.Create(&user).Error)

	expires := time.Now().Add(ttl)
	session := models.Session{Token: "st_" + string(role), ExpiresAt: &expires, UserID: user.ID}
	require.NoError(t, conn.Create(&session).Error)

	token, err := SignSessionToken(session.ID, user.ID, session.Token, expires)
	require.NoError(t, err)
	return token
}

func serve(t *testing.T, h echo.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	if err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := SignSessionToken(7, 3, "st_abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.SessionID)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "st_abc", claims.ID)

	_, err = ParseSessionToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := SignSessionToken(7, 3, "st_abc", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseSessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAuthMiddlewareSession(t *testing.T) {
	conn := testutil.UseTestDB(t)
	token := newSession(t, conn, models.RoleUser, time.Hour)

	h := VerifyAuthMiddleware()(okHandler)

	assert.Equal(t, http.StatusOK, serve(t, h, "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "Bearer nope").Code)
}

func TestVerifyAuthMiddlewareRejectsDeletedSession(t *testing.T) {
	conn := testutil.UseTestDB(t)
	token := newSession(t, conn, models.RoleUser, time.Hour)
	require.NoError(t, conn.Where("1 = 1").Delete(&models.Session{}).Error)

	h := VerifyAuthMiddleware()(okHandler)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "Bearer "+token).Code)
}

func TestRequireAdmin(t *testing.T) {
	conn := testutil.UseTestDB(t)
	t.Setenv("ADMIN_API_KEY", "admin-secret")
	t.Setenv("ADMIN_EMAILS", "")

	userToken := newSession(t, conn, models.RoleUser, time.Hour)
	adminToken := newSession(t, conn, models.RoleAdmin, time.Hour)

	h := VerifyAuthMiddleware(AuthMethodSession, AuthMethodAdminKey)(RequireAdmin(okHandler))

	assert.Equal(t, http.StatusOK, serve(t, h, "Bearer admin-secret").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, "Bearer "+adminToken).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, h, "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "Bearer wrong-secret").Code)

	t.Setenv("ADMIN_EMAILS", "someone@else.com, USER@example.com")
	assert.Equal(t, http.StatusOK, serve(t, h, "Bearer "+userToken).Code)
}

func TestAdminKeyNotAcceptedWhenUnset(t *testing.T) {
	testutil.UseTestDB(t)
	t.Setenv("ADMIN_API_KEY", "")

	h := VerifyAuthMiddleware(AuthMethodSession, AuthMethodAdminKey)(okHandler)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "Bearer anything").Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))

	e := echo.New()
	h := NewIPRateLimiter(rate.Every(time.Hour), 1).Middleware(okHandler)
	call := func() int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, "192.0.2.10")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}

func TestRateLimitDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	limiter := NewIPRateLimiterFromEnv()
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("10.0.0.1"))
	}
}
