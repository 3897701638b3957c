// SPDX-License-Identifier: GPL-3.0-only

package handlers

import "aventrada-server/notifications"

// swagger:model GenericResponse
type GenericResponse struct {
	// Whether the operation succeeded
	Success bool `json:"success" example:"true"`
	// Message indicating the result of the operation
	Message string `json:"message" example:"Operation successful"`
}

// swagger:model PaginationDetails
type PaginationDetails struct {
	// Current page number
	Page int `json:"page"`
	// Page size
	PageSize int `json:"page_size"`
	// Total number of items
	Total int64 `json:"total"`
	// Total number of pages
	TotalPages int `json:"total_pages"`
}

// swagger:model RegistrationRequest
type RegistrationRequest struct {
	// Email address to register
	// required: true
	Email string `json:"email" example:"fan@example.com"`
	// Full name
	FullName string `json:"full_name" example:"Jane Doe"`
	// Phone number, normalized to E.164 when parseable
	PhoneNumber string `json:"phone_number" example:"+1 650-253-0000"`
	// Free-text event preferences
	Preferences string `json:"preferences" example:"concerts, football"`
}

// swagger:model RegistrationDetails
type RegistrationDetails struct {
	ID          string `json:"id" example:"5f0c6a3e-7f7d-4b7a-9c0a-2d1f6e3b9a10"`
	Email       string `json:"email" example:"fan@example.com"`
	FullName    string `json:"full_name" example:"Jane Doe"`
	PhoneNumber string `json:"phone_number" example:"+16502530000"`
	Preferences string `json:"preferences" example:"concerts"`
	Status      string `json:"status" example:"pending"`
	CreatedAt   string `json:"created_at" example:"2026-10-01T12:00:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2026-10-01T12:00:00Z"`
}

// swagger:model WaitlistResponse
type WaitlistResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"You're on the waitlist"`
	// Whether a new registration was created
	Created bool `json:"created" example:"true"`
	// Registration status
	Status string `json:"status" example:"pending"`
}

// swagger:model RegistrationResponse
type RegistrationResponse struct {
	Success      bool                `json:"success" example:"true"`
	Message      string              `json:"message" example:"Registration created"`
	Created      bool                `json:"created" example:"true"`
	Registration RegistrationDetails `json:"registration"`
}

// swagger:model RegistrationCheckResponse
type RegistrationCheckResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Registration found"`
	Exists  bool   `json:"exists" example:"true"`
	Status  string `json:"status,omitempty" example:"approved"`
}

// swagger:model EmailCheckRequest
type EmailCheckRequest struct {
	// required: true
	Email string `json:"email" example:"fan@example.com"`
}

// swagger:model EmailCheckResponse
type EmailCheckResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Email checked"`
	// A registration exists for the email
	Exists bool `json:"exists" example:"true"`
	// An account exists for the email
	Registered bool   `json:"registered" example:"false"`
	Status     string `json:"status,omitempty" example:"pending"`
}

// swagger:model EmailSimilarRequest
type EmailSimilarRequest struct {
	// required: true
	Email string `json:"email" example:"fan@gmial.com"`
	// Maximum number of similar addresses (default 5, max 20)
	Limit int `json:"limit" example:"5"`
}

// swagger:model EmailSimilarResponse
type EmailSimilarResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Email checked"`
	Exists  bool   `json:"exists" example:"false"`
	// Corrected address when the domain looks like a typo
	Suggestion string   `json:"suggestion,omitempty" example:"fan@gmail.com"`
	Similar    []string `json:"similar"`
}

// swagger:model ContactRequest
type ContactRequest struct {
	// required: true
	Name string `json:"name" example:"Jane Doe"`
	// required: true
	Email   string `json:"email" example:"fan@example.com"`
	Subject string `json:"subject" example:"Partnership"`
	// required: true
	Body string `json:"message" example:"Hello there"`
}

// swagger:model ContactMessageDetails
type ContactMessageDetails struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Body      string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// swagger:model ContactMessageListResponse
type ContactMessageListResponse struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message"`
	Data       []ContactMessageDetails `json:"data"`
	Pagination PaginationDetails       `json:"pagination"`
}

// swagger:model SignupRequest
type SignupRequest struct {
	// User's email address
	// required: true
	Email string `json:"email" example:"user@example.com"`
	// User's password
	// required: true
	Password    string `json:"password" example:"MySecretPassword@123"`
	FullName    string `json:"full_name" example:"John Doe"`
	PhoneNumber string `json:"phone_number" example:"+1 650-253-0000"`
	Preferences string `json:"preferences" example:"concerts"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
	// User's password
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Login successful"`
	// Should be used in the Authorization header as a Bearer token.
	SessionToken       string `json:"session_token" example:"sample_session_token"`
	RegistrationStatus string `json:"registration_status" example:"approved"`
}

// swagger:model UserDetails
type UserDetails struct {
	ID              uint   `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"is_email_verified"`
	CreatedAt       string `json:"created_at"`
}

// swagger:model MeResponse
type MeResponse struct {
	Success            bool        `json:"success"`
	Message            string      `json:"message"`
	User               UserDetails `json:"user"`
	RegistrationStatus string      `json:"registration_status,omitempty"`
}

// swagger:model VerifyEmailRequest
type VerifyEmailRequest struct {
	// Verification token received by email
	Token string `json:"token" example:"evt_1234567890abcdef"`
}

// swagger:model AdminRegistrationRequest
type AdminRegistrationRequest struct {
	RegistrationRequest
	// pending or approved (default approved)
	Status string `json:"status" example:"approved"`
}

// swagger:model ApproveRegistrationRequest
type ApproveRegistrationRequest struct {
	// required: true
	Email string `json:"email" example:"fan@example.com"`
	// Create an approved registration when none exists
	CreateIfMissing bool `json:"create_if_missing" example:"false"`
	// Send the approval email on the first transition (default true)
	Notify *bool `json:"notify,omitempty" example:"true"`
}

// swagger:model ApproveRegistrationResponse
type ApproveRegistrationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// False when the registration was already approved
	Changed      bool                `json:"changed"`
	Registration RegistrationDetails `json:"registration"`
}

// swagger:model RegistrationListResponse
type RegistrationListResponse struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       []RegistrationDetails `json:"data"`
	Pagination PaginationDetails     `json:"pagination"`
	// Totals per status across all registrations
	Counts map[string]int64 `json:"counts"`
}

// swagger:model ReconcileResponse
type ReconcileResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Users    int    `json:"users"`
	Created  int    `json:"created"`
	Approved int    `json:"approved"`
}

// swagger:model EmailProvidersResponse
type EmailProvidersResponse struct {
	Success   bool                           `json:"success"`
	Message   string                         `json:"message"`
	Providers []notifications.ProviderStatus `json:"providers"`
	Primary   string                         `json:"primary"`
	Fallback  string                         `json:"fallback"`
	MockMode  bool                           `json:"mock_mode"`
	Queued    bool                           `json:"queued"`
}

// swagger:model TestEmailRequest
type TestEmailRequest struct {
	// required: true
	To string `json:"to" example:"ops@aventrada.com"`
	// mailgun, zepto_mail, smtp or mock; empty uses the automatic chain
	Provider string `json:"provider" example:"smtp"`
	Subject  string `json:"subject" example:"Aventrada test email"`
}

// swagger:model TestEmailResponse
type TestEmailResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	MessageID string `json:"message_id"`
	Attempts  int    `json:"attempts"`
}

// swagger:model EmailLogDetails
type EmailLogDetails struct {
	ID        string  `json:"id"`
	Provider  string  `json:"provider"`
	To        string  `json:"to"`
	Subject   string  `json:"subject"`
	Template  string  `json:"template"`
	Status    string  `json:"status"`
	MessageID *string `json:"message_id"`
	Error     *string `json:"error"`
	CreatedAt string  `json:"created_at"`
}

// swagger:model EmailLogListResponse
type EmailLogListResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       []EmailLogDetails `json:"data"`
	Pagination PaginationDetails `json:"pagination"`
}

// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"MySecretPassword@123"`
	NewPassword     string `json:"new_password" example:"MyNewSecretPassword@456"`
}

// swagger:model SessionDetails
type SessionDetails struct {
	ID         uint    `json:"id"`
	IPAddress  *string `json:"ip_address"`
	UserAgent  *string `json:"user_agent"`
	LastUsedAt *string `json:"last_used_at"`
	IsCurrent  bool    `json:"is_current"`
	IsExpired  bool    `json:"is_expired"`
	CreatedAt  string  `json:"created_at"`
}

// swagger:model SessionListResponse
type SessionListResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       []SessionDetails  `json:"data"`
	Pagination PaginationDetails `json:"pagination"`
}

// swagger:model DeleteSessionsResponse
type DeleteSessionsResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}
