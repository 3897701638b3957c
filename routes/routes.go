// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"aventrada-server/commons"
	"aventrada-server/handlers"
	"aventrada-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering v1 routes")

	limiter := middlewares.NewIPRateLimiterFromEnv()
	session := middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession)
	admin := []echo.MiddlewareFunc{
		middlewares.VerifyAuthMiddleware(middlewares.AuthMethodSession, middlewares.AuthMethodAdminKey),
		middlewares.RequireAdmin,
	}

	e.GET("/healthz", handlers.HealthHandler)

	api_v1 := e.Group("/v1")
	api_v1.POST("/waitlist", handlers.WaitlistHandler, limiter.Middleware)
	api_v1.POST("/registrations", handlers.CreateRegistrationHandler, limiter.Middleware)
	api_v1.GET("/registrations/check", handlers.CheckRegistrationHandler)
	api_v1.POST("/emails/check", handlers.CheckEmailHandler, limiter.Middleware)
	api_v1.POST("/emails/similar", handlers.SimilarEmailsHandler, limiter.Middleware)
	api_v1.POST("/contact", handlers.ContactHandler, limiter.Middleware)

	api_v1.POST("/auth/signup", handlers.SignupHandler, limiter.Middleware)
	api_v1.POST("/auth/login", handlers.LoginHandler, limiter.Middleware)
	api_v1.POST("/auth/logout", handlers.LogoutHandler, session)
	api_v1.GET("/auth/me", handlers.MeHandler, session)
	api_v1.POST("/auth/change-password", handlers.ChangePasswordHandler, session)
	api_v1.GET("/auth/sessions", handlers.ListSessionsHandler, session)
	api_v1.DELETE("/auth/sessions", handlers.DeleteOtherSessionsHandler, session)
	api_v1.DELETE("/auth/sessions/:session_id", handlers.DeleteSessionHandler, session)
	api_v1.POST("/auth/send-verification-email", handlers.SendVerificationEmailHandler, session)
	api_v1.POST("/auth/resend-verification-email", handlers.ResendVerificationEmailHandler, session)
	api_v1.POST("/auth/verify-email", handlers.VerifyEmailHandler, limiter.Middleware)

	admin_v1 := api_v1.Group("/admin", admin...)
	admin_v1.GET("/registrations", handlers.ListRegistrationsHandler)
	admin_v1.POST("/registrations", handlers.AdminUpsertRegistrationHandler)
	admin_v1.POST("/registrations/approve", handlers.ApproveRegistrationHandler)
	admin_v1.POST("/registrations/reconcile", handlers.ReconcileRegistrationsHandler)
	admin_v1.GET("/contact-messages", handlers.ListContactMessagesHandler)
	admin_v1.GET("/emails/providers", handlers.EmailProvidersHandler)
	admin_v1.POST("/emails/test", handlers.SendTestEmailHandler)
	admin_v1.GET("/emails/logs", handlers.ListEmailLogsHandler)

	commons.Logger.Info("v1 routes registered successfully")
}
