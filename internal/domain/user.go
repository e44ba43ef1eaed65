package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account holder. PhoneNumber stores the local number; the
// canonical phone channel identifier is CountryCode (digits only) followed
// by PhoneNumber, built by pkg/phone.Identifier.
type User struct {
	UserID        string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	CountryCode   string    `json:"country_code,omitempty"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created"`
	UpdatedAt     time.Time `json:"updated"`
}

// FullyVerified reports whether both channels have been confirmed.
// The transition to fully verified triggers the one-time welcome dispatch.
func (u *User) FullyVerified() bool {
	return u.EmailVerified && u.PhoneVerified
}

// NeedsVerification applies the signup-time primary-channel policy: a user
// with a phone number on file must verify the phone; otherwise email alone
// gates access.
func (u *User) NeedsVerification() bool {
	if u.PhoneNumber != nil && *u.PhoneNumber != "" {
		return !u.PhoneVerified
	}
	return !u.EmailVerified
}

// VerificationStatus is the per-user projection returned by the status
// endpoint. Derived, never stored.
type VerificationStatus struct {
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	EmailVerified     bool    `json:"email_verified"`
	PhoneVerified     bool    `json:"phone_verified"`
	IsFullyVerified   bool    `json:"is_fully_verified"`
	NeedsVerification bool    `json:"needs_verification"`
}

type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Password    string `json:"password" validate:"required,min=8,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	CountryCode string `json:"country_code" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
}

type SigninRequest struct {
	// Identifier may be a username, email address or phone number.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}
