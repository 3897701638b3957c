// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/db"
	"aventrada-server/middlewares"
	"aventrada-server/models"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ListSessionsHandler godoc
// @Summary      List sessions
// @Description  Lists the authenticated user's sessions, most recently used first.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page       query  int  false  "Page number (default 1)"
// @Param        page_size  query  int  false  "Page size (default 20, max 100)"
// @Success      200 {object} SessionListResponse "Paginated list of sessions"
// @Failure      401 {object} GenericResponse     "Unauthorized"
// @Failure      500 {object} GenericResponse     "Internal server error"
// @Router       /v1/auth/sessions [get]
func ListSessionsHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	current, _ := c.Get("session").(models.Session)
	page, pageSize := parsePagination(c)

	query := db.Conn.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", user.ID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("Failed to count sessions: %v", err)
		return echo.ErrInternalServerError
	}

	var sessions []models.Session
	if err := query.Order("last_used_at DESC, created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&sessions).Error; err != nil {
		logger.Errorf("Failed to fetch sessions: %v", err)
		return echo.ErrInternalServerError
	}

	now := time.Now()
	data := make([]SessionDetails, 0, len(sessions))
	for _, s := range sessions {
		detail := SessionDetails{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			IsCurrent: s.ID == current.ID,
			IsExpired: s.Expired(now),
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		}
		if s.LastUsedAt != nil {
			lastUsed := s.LastUsedAt.Format(time.RFC3339)
			detail.LastUsedAt = &lastUsed
		}
		data = append(data, detail)
	}

	return c.JSON(http.StatusOK, SessionListResponse{
		Success:    true,
		Message:    "Sessions retrieved successfully",
		Data:       data,
		Pagination: paginationDetails(page, pageSize, total),
	})
}

// DeleteSessionHandler godoc
// @Summary      Revoke a session
// @Description  Signs out one of the user's other sessions. The current session is ended with logout instead.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        session_id  path  int  true  "Session ID"
// @Success      200 {object} GenericResponse "Session deleted successfully"
// @Failure      400 {object} GenericResponse "Invalid ID or current session"
// @Failure      401 {object} GenericResponse "Unauthorized"
// @Failure      404 {object} GenericResponse "Session not found"
// @Failure      500 {object} GenericResponse "Internal server error"
// @Router       /v1/auth/sessions/{session_id} [delete]
func DeleteSessionHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	sessionID, err := strconv.ParseUint(c.Param("session_id"), 10, 64)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid session ID format",
		}
	}

	current, _ := c.Get("session").(models.Session)
	if uint(sessionID) == current.ID {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Cannot delete current session. Use logout endpoint instead.",
		}
	}

	session := models.Session{}
	if err := db.Conn.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, user.ID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "Session not found",
			}
		}
		logger.Errorf("Failed to find session: %v", err)
		return echo.ErrInternalServerError
	}

	if err := db.Conn.WithContext(ctx).Delete(&session).Error; err != nil {
		logger.Errorf("Failed to delete session: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Session %d deleted for user %d", session.ID, user.ID)
	return c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Session deleted successfully",
	})
}

// DeleteOtherSessionsHandler godoc
// @Summary      Revoke all other sessions
// @Description  Signs out every session of the user except the current one.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} DeleteSessionsResponse "Other sessions deleted"
// @Failure      401 {object} GenericResponse        "Unauthorized"
// @Failure      500 {object} GenericResponse        "Internal server error"
// @Router       /v1/auth/sessions [delete]
func DeleteOtherSessionsHandler(c echo.Context) error {
	logger := c.Logger()

	current, ok := c.Get("session").(models.Session)
	if !ok {
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Current session not found",
		}
	}

	result := db.Conn.WithContext(c.Request().Context()).
		Where("user_id = ? AND id <> ?", current.UserID, current.ID).
		Delete(&models.Session{})
	if result.Error != nil {
		logger.Errorf("Failed to delete sessions: %v", result.Error)
		return echo.ErrInternalServerError
	}

	logger.Infof("Deleted %d other sessions for user %d", result.RowsAffected, current.UserID)
	return c.JSON(http.StatusOK, DeleteSessionsResponse{
		Success:      true,
		Message:      "All other sessions deleted successfully",
		DeletedCount: result.RowsAffected,
	})
}
