// Package auth implements account registration, sign-in and the
// OTP-backed verification and password-reset flows.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Santiago1809/auth-ms/internal/domain"
	jwtinfra "github.com/Santiago1809/auth-ms/internal/infrastructure/jwt"
	"github.com/Santiago1809/auth-ms/internal/pkg/id"
	"github.com/Santiago1809/auth-ms/internal/pkg/phone"
	"github.com/Santiago1809/auth-ms/internal/templates"
)

// AuthResult is a signed session token together with the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type Service interface {
	// Signup creates the account, kicks off verification on both channels
	// (numeric code over WhatsApp, magic link over email) and signs a
	// session token. Dispatch failures do not fail the signup; the user can
	// resend.
	Signup(ctx context.Context, req domain.SignupRequest) (*AuthResult, error)

	// Signin authenticates by username, email or phone plus password.
	Signin(ctx context.Context, req domain.SigninRequest) (*AuthResult, error)

	// SendOTP issues a numeric code for the channel and dispatches it.
	SendOTP(ctx context.Context, identifier string, ch domain.Channel) error

	// VerifyOTP consumes a matching code and, on success, marks the channel
	// verified on the owning account.
	VerifyOTP(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error)

	// Resend invalidates every pending code for the user's unverified
	// channels and dispatches fresh ones. Fully verified accounts get
	// ErrBadRequest.
	Resend(ctx context.Context, identifier string) error

	// VerifyEmailToken consumes a magic-link token and marks the email
	// channel verified.
	VerifyEmailToken(ctx context.Context, token string) (bool, error)

	// RequestPasswordReset emails a reset code to the account.
	RequestPasswordReset(ctx context.Context, email string) error

	// VerifyPasswordReset exchanges a valid reset code for a purpose-bound
	// reset token and emails the reset link.
	VerifyPasswordReset(ctx context.Context, email, code string) (string, error)

	// ChangePassword sets a new password, authorized by a reset token.
	ChangePassword(ctx context.Context, resetToken, newPassword string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	SetChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type otpService interface {
	Issue(ctx context.Context, identifier string, ch domain.Channel, userID *string, isMagicLink bool) (string, error)
	Verify(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error)
	VerifyMagicLink(ctx context.Context, token string) (*domain.OTPRecord, bool, error)
	InvalidatePending(ctx context.Context, identifier string, ch domain.Channel) error
	IsChannelEverVerified(ctx context.Context, identifier string, ch domain.Channel) (bool, error)
}

type reconciler interface {
	OnChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error
}

type mailer interface {
	SendEmail(to, subject, html string) error
}

type smsSender interface {
	SendOTP(ctx context.Context, phoneIdentifier, code string, userID *string) bool
}

type tokenProvider interface {
	SignSession(username, role string, userID *string) (string, error)
	SignReset(email string) (string, error)
	VerifyReset(token string) (*jwtinfra.ResetClaims, error)
}

type service struct {
	users         userStore
	otps          otpService
	reconciler    reconciler
	mailer        mailer
	whatsapp      smsSender
	tokens        tokenProvider
	frontendURL   string
	apiBaseURL    string
	expiryMinutes int
}

type ServiceDeps struct {
	Users         userStore
	OTPs          otpService
	Reconciler    reconciler
	Mailer        mailer
	WhatsApp      smsSender
	Tokens        tokenProvider
	FrontendURL   string
	APIBaseURL    string
	ExpiryMinutes int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:         deps.Users,
		otps:          deps.OTPs,
		reconciler:    deps.Reconciler,
		mailer:        deps.Mailer,
		whatsapp:      deps.WhatsApp,
		tokens:        deps.Tokens,
		frontendURL:   deps.FrontendURL,
		apiBaseURL:    deps.APIBaseURL,
		expiryMinutes: deps.ExpiryMinutes,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PhoneNumber:  &req.PhoneNumber,
		CountryCode:  req.CountryCode,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	// Verification dispatch is best effort here: the account exists either
	// way and /verification/resend-otp recovers from any delivery failure.
	if err := s.dispatchPhoneCode(ctx, u); err != nil {
		slog.Warn("signup phone verification dispatch failed", "username", u.Username, "error", err)
	}
	if err := s.dispatchMagicLink(ctx, u); err != nil {
		slog.Warn("signup email verification dispatch failed", "username", u.Username, "error", err)
	}

	token, err := s.tokens.SignSession(u.Username, u.Role, &u.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Signin(ctx context.Context, req domain.SigninRequest) (*AuthResult, error) {
	u, err := s.users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		// Unknown identifier and wrong password are indistinguishable.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.SignSession(u.Username, u.Role, &u.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) SendOTP(ctx context.Context, identifier string, ch domain.Channel) error {
	u, err := s.lookupByChannel(ctx, identifier, ch)
	if err != nil {
		return err
	}

	if ch == domain.ChannelPhone {
		return s.dispatchPhoneCode(ctx, u)
	}

	code, err := s.otps.Issue(ctx, u.Email, domain.ChannelEmail, &u.UserID, false)
	if err != nil {
		return err
	}
	html, err := templates.VerificationCode(u.Username, code, "email address", s.expiryMinutes)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Your verification code", html)
}

func (s *service) VerifyOTP(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error) {
	u, err := s.lookupByChannel(ctx, identifier, ch)
	if err != nil {
		return false, err
	}
	canonical := s.channelIdentifier(u, ch)

	ok, err := s.otps.Verify(ctx, canonical, code, ch)
	if err != nil || !ok {
		return false, err
	}
	// The verifying flow owns the flag write; the reconciler only reacts.
	if err := s.users.SetChannelVerified(ctx, canonical, ch); err != nil {
		return false, err
	}
	if err := s.reconciler.OnChannelVerified(ctx, canonical, ch); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Resend(ctx context.Context, identifier string) error {
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if u.FullyVerified() {
		return fmt.Errorf("account is already verified: %w", domain.ErrBadRequest)
	}

	// Channel failures are isolated: one transport being down must not block
	// the re-dispatch on the other channel.
	if !u.PhoneVerified && u.PhoneNumber != nil && *u.PhoneNumber != "" {
		canonical := s.channelIdentifier(u, domain.ChannelPhone)
		if err := s.otps.InvalidatePending(ctx, canonical, domain.ChannelPhone); err != nil {
			return err
		}
		if err := s.dispatchPhoneCode(ctx, u); err != nil {
			slog.Warn("resend phone dispatch failed", "username", u.Username, "error", err)
		}
	}
	if !u.EmailVerified {
		if err := s.otps.InvalidatePending(ctx, u.Email, domain.ChannelEmail); err != nil {
			return err
		}
		if err := s.dispatchMagicLink(ctx, u); err != nil {
			slog.Warn("resend email dispatch failed", "username", u.Username, "error", err)
		}
	}
	return nil
}

func (s *service) VerifyEmailToken(ctx context.Context, token string) (bool, error) {
	rec, ok, err := s.otps.VerifyMagicLink(ctx, token)
	if err != nil || !ok {
		return false, err
	}
	if err := s.users.SetChannelVerified(ctx, *rec.Email, domain.ChannelEmail); err != nil {
		return false, err
	}
	if err := s.reconciler.OnChannelVerified(ctx, *rec.Email, domain.ChannelEmail); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	// Only the newest reset code is ever valid.
	if err := s.otps.InvalidatePending(ctx, u.Email, domain.ChannelEmail); err != nil {
		return err
	}
	code, err := s.otps.Issue(ctx, u.Email, domain.ChannelEmail, &u.UserID, false)
	if err != nil {
		return err
	}
	html, err := templates.ResetCode(code)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Password reset code", html)
}

func (s *service) VerifyPasswordReset(ctx context.Context, email, code string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", err
	}
	ok, err := s.otps.Verify(ctx, u.Email, code, domain.ChannelEmail)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.SignReset(u.Email)
	if err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	html, err := templates.ResetLink(u.Username, link, s.expiryMinutes)
	if err != nil {
		return "", err
	}
	if err := s.mailer.SendEmail(u.Email, "Reset your password", html); err != nil {
		// The token is already returned in the response body; the email is
		// a convenience copy.
		slog.Error("reset link email delivery failed", "error", err)
	}
	return token, nil
}

func (s *service) ChangePassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return err
	}
	// The token alone is not enough: the email channel must have been
	// verified at least once on this account.
	verified, err := s.otps.IsChannelEverVerified(ctx, claims.Email, domain.ChannelEmail)
	if err != nil {
		return err
	}
	if !verified {
		return fmt.Errorf("email was never verified: %w", domain.ErrForbidden)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, claims.Email, string(hash)); err != nil {
		return err
	}
	// Leftover reset codes must not survive a successful change.
	return s.otps.InvalidatePending(ctx, claims.Email, domain.ChannelEmail)
}

// dispatchPhoneCode issues a numeric code under the canonical phone
// identifier and sends it over WhatsApp.
func (s *service) dispatchPhoneCode(ctx context.Context, u *domain.User) error {
	if u.PhoneNumber == nil || *u.PhoneNumber == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	canonical := phone.Identifier(u.CountryCode, *u.PhoneNumber)
	code, err := s.otps.Issue(ctx, canonical, domain.ChannelPhone, &u.UserID, false)
	if err != nil {
		return err
	}
	if !s.whatsapp.SendOTP(ctx, canonical, code, &u.UserID) {
		slog.Error("whatsapp otp dispatch failed", "username", u.Username)
		return fmt.Errorf("could not deliver code: %w", domain.ErrDelivery)
	}
	return nil
}

func (s *service) dispatchMagicLink(ctx context.Context, u *domain.User) error {
	token, err := s.otps.Issue(ctx, u.Email, domain.ChannelEmail, &u.UserID, true)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/verification/verify-email?token=%s", s.apiBaseURL, url.QueryEscape(token))
	html, err := templates.MagicLink(u.Username, link, s.expiryMinutes)
	if err != nil {
		return err
	}
	if err := s.mailer.SendEmail(u.Email, "Verify your email address", html); err != nil {
		slog.Error("magic link email delivery failed", "username", u.Username, "error", err)
		return err
	}
	return nil
}

func (s *service) lookupByChannel(ctx context.Context, identifier string, ch domain.Channel) (*domain.User, error) {
	if ch == domain.ChannelEmail {
		// Emails are stored lowercased at signup; accept any casing here.
		return s.users.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.users.GetByPhone(ctx, identifier)
}

// channelIdentifier is the form codes are stored under: the email address,
// or the country code (digits only) followed by the local phone number.
func (s *service) channelIdentifier(u *domain.User, ch domain.Channel) string {
	if ch == domain.ChannelEmail {
		return u.Email
	}
	return phone.Identifier(u.CountryCode, *u.PhoneNumber)
}
