// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/db"
	"aventrada-server/models"
	"aventrada-server/registrations"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func toRegistrationDetails(reg *models.Registration) RegistrationDetails {
	return RegistrationDetails{
		ID:          reg.ID,
		Email:       reg.Email,
		FullName:    reg.FullName,
		PhoneNumber: reg.PhoneNumber,
		Preferences: reg.Preferences,
		Status:      string(reg.Status),
		CreatedAt:   reg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   reg.UpdatedAt.Format(time.RFC3339),
	}
}

func bindRegistration(c echo.Context) (registrations.Input, error) {
	logger := c.Logger()

	var req RegistrationRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid registration request payload:", err)
		return registrations.Input{}, echo.ErrBadRequest
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return registrations.Input{}, &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if err := commons.ValidateEmail(req.Email); err != nil {
		logger.Errorf("Invalid email %q: %v", req.Email, err)
		return registrations.Input{}, &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Please provide a valid email address",
		}
	}

	return registrations.Input{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Preferences: req.Preferences,
	}, nil
}

// WaitlistHandler godoc
// @Summary      Join the waitlist
// @Description  Creates a pending registration, or merges the details into the existing one for the same email.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationRequest  body  RegistrationRequest  true  "Waitlist signup payload"
// @Success      201 {object} WaitlistResponse "Added to the waitlist"
// @Success      200 {object} WaitlistResponse "Already on the waitlist"
// @Failure      400 {object} GenericResponse  "Bad request, missing or invalid email"
// @Failure      429 {object} GenericResponse  "Too many requests"
// @Failure      500 {object} GenericResponse  "Internal server error"
// @Router       /v1/waitlist [post]
func WaitlistHandler(c echo.Context) error {
	logger := c.Logger()

	input, err := bindRegistration(c)
	if err != nil {
		return err
	}

	reg, created, err := registrations.Upsert(c.Request().Context(), db.Conn, input)
	if err != nil {
		logger.Errorf("Failed to upsert registration: %v", err)
		return echo.ErrInternalServerError
	}

	if !created {
		return c.JSON(http.StatusOK, WaitlistResponse{
			Success: true,
			Message: "You're already on the waitlist",
			Created: false,
			Status:  string(reg.Status),
		})
	}

	sendWaitlistEmail(logger, reg)

	logger.Infof("Waitlist registration created: %s", reg.ID)
	return c.JSON(http.StatusCreated, WaitlistResponse{
		Success: true,
		Message: "You're on the waitlist",
		Created: true,
		Status:  string(reg.Status),
	})
}

// CreateRegistrationHandler godoc
// @Summary      Create or update a registration
// @Description  Same as the waitlist signup but returns the stored registration.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationRequest  body  RegistrationRequest  true  "Registration payload"
// @Success      201 {object} RegistrationResponse "Registration created"
// @Success      200 {object} RegistrationResponse "Registration updated"
// @Failure      400 {object} GenericResponse      "Bad request, missing or invalid email"
// @Failure      429 {object} GenericResponse      "Too many requests"
// @Failure      500 {object} GenericResponse      "Internal server error"
// @Router       /v1/registrations [post]
func CreateRegistrationHandler(c echo.Context) error {
	logger := c.Logger()

	input, err := bindRegistration(c)
	if err != nil {
		return err
	}

	reg, created, err := registrations.Upsert(c.Request().Context(), db.Conn, input)
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

	return c.JSON(code, RegistrationResponse{
		Success:      true,
		Message:      message,
		Created:      created,
		Registration: toRegistrationDetails(reg),
	})
}

// CheckRegistrationHandler godoc
// @Summary      Check a registration
// @Description  Looks a registration up by email, ignoring case.
// @Tags         registrations
// @Produce      json
// @Param        email  query  string  true  "Email address"
// @Success      200 {object} RegistrationCheckResponse "Registration found"
// @Failure      400 {object} GenericResponse           "Bad request, missing email"
// @Failure      404 {object} RegistrationCheckResponse "Registration not found"
// @Failure      500 {object} GenericResponse           "Internal server error"
// @Router       /v1/registrations/check [get]
func CheckRegistrationHandler(c echo.Context) error {
	logger := c.Logger()

	email := commons.NormalizeEmail(c.QueryParam("email"))
	if email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email query parameter is required",
		}
	}

	reg, err := registrations.FindByEmail(c.Request().Context(), db.Conn, email)
	if errors.Is(err, registrations.ErrNotFound) {
		return c.JSON(http.StatusNotFound, RegistrationCheckResponse{
			Success: false,
			Message: "Registration not found",
			Exists:  false,
		})
	}
	if err != nil {
		logger.Errorf("Failed to look up registration: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, RegistrationCheckResponse{
		Success: true,
		Message: "Registration found",
		Exists:  true,
		Status:  string(reg.Status),
	})
}
