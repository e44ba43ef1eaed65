// Package verification reconciles per-channel confirmations into the
// account-level verified state and fires the one-time welcome email when
// both channels are confirmed.
package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Santiago1809/auth-ms/internal/domain"
	"github.com/Santiago1809/auth-ms/internal/templates"
)

type Reconciler interface {
	// OnChannelVerified reacts to a channel confirmation the calling flow
	// has already recorded on the user: it re-reads the combined state and,
	// if both channels are now confirmed, sends the welcome email. Welcome
	// delivery is at-least-once: a failure is logged, never surfaced, and a
	// later reconcile may send it again.
	OnChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error

	// Status projects the current verification state for the user matching
	// the identifier (username, email or phone).
	Status(ctx context.Context, identifier string) (*domain.VerificationStatus, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

type mailer interface {
	SendEmail(to, subject, html string) error
}

type reconciler struct {
	users       userStore
	mailer      mailer
	frontendURL string
}

type ReconcilerDeps struct {
	Users       userStore
	Mailer      mailer
	FrontendURL string
}

func NewReconciler(deps ReconcilerDeps) Reconciler {
	return &reconciler{users: deps.Users, mailer: deps.Mailer, frontendURL: deps.FrontendURL}
}

func (r *reconciler) OnChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error {
	// Re-read instead of trusting in-memory state: the other channel may
	// have been confirmed by a concurrent request.
	user, err := r.lookup(ctx, identifier, ch)
	if err != nil {
		return err
	}
	if !user.FullyVerified() {
		return nil
	}

	html, err := templates.Welcome(user.Username, r.frontendURL)
	if err != nil {
		return fmt.Errorf("welcome email: %w", err)
	}
	if err := r.mailer.SendEmail(user.Email, "Welcome! Your account is fully verified", html); err != nil {
		slog.Error("welcome email delivery failed",
			"username", user.Username, "error", err)
		return nil
	}
	slog.Info("welcome email sent", "username", user.Username)
	return nil
}

func (r *reconciler) Status(ctx context.Context, identifier string) (*domain.VerificationStatus, error) {
	user, err := r.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return &domain.VerificationStatus{
		Username:          user.Username,
		Email:             user.Email,
		PhoneNumber:       user.PhoneNumber,
		EmailVerified:     user.EmailVerified,
		PhoneVerified:     user.PhoneVerified,
		IsFullyVerified:   user.FullyVerified(),
		NeedsVerification: user.NeedsVerification(),
	}, nil
}

func (r *reconciler) lookup(ctx context.Context, identifier string, ch domain.Channel) (*domain.User, error) {
	if ch == domain.ChannelEmail {
		return r.users.GetByEmail(ctx, identifier)
	}
	return r.users.GetByPhone(ctx, identifier)
}
