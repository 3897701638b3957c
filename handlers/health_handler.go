// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/db"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports whether the server and its database are reachable.
// @Tags         health
// @Produce      json
// @Success      200 {object} GenericResponse "Service healthy"
// @Failure      503 {object} GenericResponse "Database unavailable"
// @Router       /healthz [get]
func HealthHandler(c echo.Context) error {
	logger := c.Logger()

	sqlDB, err := db.Conn.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logger.Error("Database ping failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "database unavailable",
		}
	}

	return c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok"})
}
