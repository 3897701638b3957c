// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/db"
	"aventrada-server/models"
	"aventrada-server/registrations"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ListRegistrationsHandler godoc
// @Summary      List registrations
// @Description  Returns registrations, newest first, optionally filtered by status, with per-status totals.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        status     query  string  false  "pending or approved"
// @Param        page       query  int     false  "Page number (default 1)"
// @Param        page_size  query  int     false  "Page size (default 20, max 100)"
// @Success      200 {object} RegistrationListResponse "Paginated registrations"
// @Failure      400 {object} GenericResponse          "Invalid status"
// @Failure      401 {object} GenericResponse          "Unauthorized"
// @Failure      403 {object} GenericResponse          "Admin access required"
// @Failure      500 {object} GenericResponse          "Internal server error"
// @Router       /v1/admin/registrations [get]
func ListRegistrationsHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()
	page, pageSize := parsePagination(c)

	status := models.RegistrationStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	rows, total, err := registrations.List(ctx, db.Conn, registrations.Filter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if errors.Is(err, registrations.ErrInvalidStatus) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "status must be pending or approved",
		}
	}
	if err != nil {
		logger.Errorf("Failed to list registrations: %v", err)
		return echo.ErrInternalServerError
	}

	counts, err := registrations.CountByStatus(ctx, db.Conn)
	if err != nil {
		logger.Errorf("Failed to count registrations: %v", err)
		return echo.ErrInternalServerError
	}

	data := make([]RegistrationDetails, 0, len(rows))
	for i := range rows {
		data = append(data, toRegistrationDetails(&rows[i]))
	}

	byStatus := make(map[string]int64, len(counts))
	for s, n := range counts {
		byStatus[string(s)] = n
	}

	return c.JSON(http.StatusOK, RegistrationListResponse{
		Success:    true,
		Message:    "Registrations retrieved successfully",
		Data:       data,
		Pagination: paginationDetails(page, pageSize, total),
		Counts:     byStatus,
	})
}

// AdminUpsertRegistrationHandler godoc
// @Summary      Create or update a registration
// @Description  Upserts a registration with an explicit status (default approved). An approved registration is never downgraded.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        adminRegistrationRequest  body  AdminRegistrationRequest  true  "Registration payload"
// @Success      201 {object} RegistrationResponse "Registration created"
// @Success      200 {object} RegistrationResponse "Registration updated"
// @Failure      400 {object} GenericResponse      "Bad request"
// @Failure      401 {object} GenericResponse      "Unauthorized"
// @Failure      403 {object} GenericResponse      "Admin access required"
// @Failure      500 {object} GenericResponse      "Internal server error"
// @Router       /v1/admin/registrations [post]
func AdminUpsertRegistrationHandler(c echo.Context) error {
	logger := c.Logger()

	var req AdminRegistrationRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid registration request payload:", err)
		return echo.ErrBadRequest
	}

	if err := commons.ValidateEmail(req.Email); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Please provide a valid email address",
		}
	}

	status := models.RegistrationApproved
	if req.Status != "" {
		status = models.RegistrationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	}
	if !status.Valid() {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "status must be pending or approved",
		}
	}

	reg, created, err := registrations.Upsert(c.Request().Context(), db.Conn, registrations.Input{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Preferences: req.Preferences,
		Status:      status,
	})
	if err != nil {
		logger.Errorf("Failed to upsert registration: %v", err)
		return echo.ErrInternalServerError
	}

	code := http.StatusOK
	message := "Registration updated"
	if created {
		code = http.StatusCreated
		message = "Registration created"
	}

	logger.Infof("Admin upserted registration %s (%s)", reg.ID, reg.Status)
	return c.JSON(code, RegistrationResponse{
		Success:      true,
		Message:      message,
		Created:      created,
		Registration: toRegistrationDetails(reg),
	})
}

// ApproveRegistrationHandler godoc
// @Summary      Approve a registration
// @Description  Flips a registration to approved. Idempotent; the approval email is only sent on the first transition.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        approveRegistrationRequest  body  ApproveRegistrationRequest  true  "Approval payload"
// @Success      200 {object} ApproveRegistrationResponse "Registration approved"
// @Failure      400 {object} GenericResponse             "Bad request"
// @Failure      401 {object} GenericResponse             "Unauthorized"
// @Failure      403 {object} GenericResponse             "Admin access required"
// @Failure      404 {object} GenericResponse             "Registration not found"
// @Failure      500 {object} GenericResponse             "Internal server error"
// @Router       /v1/admin/registrations/approve [post]
func ApproveRegistrationHandler(c echo.Context) error {
	logger := c.Logger()

	var req ApproveRegistrationRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid approve request payload:", err)
		return echo.ErrBadRequest
	}

	if strings.TrimSpace(req.Email) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	reg, changed, err := registrations.Approve(c.Request().Context(), db.Conn, req.Email, req.CreateIfMissing)
	if errors.Is(err, registrations.ErrNotFound) {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Registration not found",
		}
	}
	if err != nil {
		logger.Errorf("Failed to approve registration: %v", err)
		return echo.ErrInternalServerError
	}

	message := "Registration already approved"
	if changed {
		message = "Registration approved"
		if req.Notify == nil || *req.Notify {
			sendApprovalEmail(logger, reg)
		}
		logger.Infof("Registration %s approved", reg.ID)
	}

	return c.JSON(http.StatusOK, ApproveRegistrationResponse{
		Success:      true,
		Message:      message,
		Changed:      changed,
		Registration: toRegistrationDetails(reg),
	})
}

// ReconcileRegistrationsHandler godoc
// @Summary      Reconcile registrations with accounts
// @Description  Creates missing registrations for existing accounts and approves those of verified users and admins.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} ReconcileResponse "Reconciliation finished"
// @Failure      401 {object} GenericResponse   "Unauthorized"
// @Failure      403 {object} GenericResponse   "Admin access required"
// @Failure      500 {object} GenericResponse   "Internal server error"
// @Router       /v1/admin/registrations/reconcile [post]
func ReconcileRegistrationsHandler(c echo.Context) error {
	logger := c.Logger()

	result, err := registrations.Reconcile(c.Request().Context(), db.Conn)
	if err != nil {
		logger.Errorf("Reconciliation failed: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Reconciled %d users: %d created, %d approved", result.Users, result.Created, result.Approved)
	return c.JSON(http.StatusOK, ReconcileResponse{
		Success:  true,
		Message:  "Reconciliation finished",
		Users:    result.Users,
		Created:  result.Created,
		Approved: result.Approved,
	})
}
