// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"aventrada-server/commons"
	"aventrada-server/models"
	"aventrada-server/notifications"
	"strings"

	"github.com/labstack/echo/v4"
)

func siteURL() string {
	return strings.TrimRight(commons.GetEnv("PUBLIC_SITE_URL", "https://aventrada.com"), "/")
}

// dispatchEmail queues an email through the automatic provider chain. Delivery
// failures are logged and never fail the request.
func dispatchEmail(logger echo.Logger, to, name, subject, template string, vars map[string]any) {
	data := notifications.NotificationData{
		To:        to,
		Subject:   subject,
		Template:  template,
		Variables: vars,
	}
	if name != "" {
		data.ToName = &name
		vars["name"] = name
	}

	if err := notifications.DispatchNotification(notifications.Email, notifications.Auto, data); err != nil {
		logger.Errorf("Failed to dispatch %s email: %v", template, err)
	}
}

func sendWaitlistEmail(logger echo.Logger, reg *models.Registration) {
	dispatchEmail(logger, reg.Email, reg.FullName, "You're on the Aventrada waitlist", "waitlist_received", map[string]any{})
}

func sendApprovalEmail(logger echo.Logger, reg *models.Registration) {
	dispatchEmail(logger, reg.Email, reg.FullName, "Your Aventrada registration is approved", "registration_approved", map[string]any{
		"login_url": siteURL() + "/login",
	})
}
