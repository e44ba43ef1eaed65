// Package otp implements the credential lifecycle: issuance, single-use
// verification, bulk invalidation and expiry purging. Per-record state
// machine: Issued -> (Consumed | Expired), with no transition out of either
// terminal state.
package otp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Santiago1809/auth-ms/internal/domain"
	"github.com/Santiago1809/auth-ms/internal/pkg/id"
	"github.com/Santiago1809/auth-ms/internal/pkg/otpcode"
)

type Service interface {
	// Issue generates a code, persists a new record expiring after the
	// configured window and returns the plaintext code for dispatch. Prior
	// records stay valid; callers wanting a single active code must call
	// InvalidatePending first.
	Issue(ctx context.Context, identifier string, ch domain.Channel, userID *string, isMagicLink bool) (string, error)

	// Verify consumes the most recent matching unconsumed, unexpired record.
	// Wrong code, expired, already used and never issued all collapse into
	// false with no error, so callers cannot build an oracle. Exactly one of
	// two concurrent verifies with the same valid code succeeds.
	Verify(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error)

	// VerifyMagicLink consumes an email magic-link record located by token
	// alone and returns it so the caller can flip the owner's flag.
	VerifyMagicLink(ctx context.Context, token string) (*domain.OTPRecord, bool, error)

	// InvalidatePending bulk-marks all unconsumed records for the
	// identifier/channel as consumed (the resend flow's guarantee that only
	// the newest code is ever valid).
	InvalidatePending(ctx context.Context, identifier string, ch domain.Channel) error

	// PurgeExpired deletes every record strictly past expiry, regardless of
	// consumed state, and returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)

	// IsChannelEverVerified reports whether any record for the
	// identifier/channel was ever consumed. Secondary guard for sensitive
	// follow-ups beyond the primary token check.
	IsChannelEverVerified(ctx context.Context, identifier string, ch domain.Channel) (bool, error)
}

type otpStore interface {
	Create(ctx context.Context, rec *domain.OTPRecord) error
	FindLatestMatching(ctx context.Context, identifier string, ch domain.Channel, code string) (*domain.OTPRecord, error)
	FindMagicLink(ctx context.Context, token string) (*domain.OTPRecord, error)
	MarkConsumed(ctx context.Context, id string) (bool, error)
	MarkAllConsumed(ctx context.Context, identifier string, ch domain.Channel) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	ExistsConsumed(ctx context.Context, identifier string, ch domain.Channel) (bool, error)
}

type service struct {
	store  otpStore
	expiry time.Duration
	now    func() time.Time
}

type ServiceDeps struct {
	Store  otpStore
	Expiry time.Duration

	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: deps.Store, expiry: deps.Expiry, now: now}
}

func (s *service) Issue(ctx context.Context, identifier string, ch domain.Channel, userID *string, isMagicLink bool) (string, error) {
	code, err := otpcode.Generate(isMagicLink)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	rec := &domain.OTPRecord{
		ID:          id.New(),
		UserID:      userID,
		Code:        code,
		IsMagicLink: isMagicLink,
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
	}
	if ch == domain.ChannelEmail {
		rec.Email = &identifier
	} else {
		rec.PhoneNumber = &identifier
	}

	// A crash between generate and persist just loses the code; nothing was
	// exposed, the caller retries issuance.
	if err := s.store.Create(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) Verify(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error) {
	rec, err := s.store.FindLatestMatching(ctx, identifier, ch, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	// Conditional update: the race loser sees false here.
	return s.store.MarkConsumed(ctx, rec.ID)
}

func (s *service) VerifyMagicLink(ctx context.Context, token string) (*domain.OTPRecord, bool, error) {
	rec, err := s.store.FindMagicLink(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	ok, err := s.store.MarkConsumed(ctx, rec.ID)
	if err != nil || !ok {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *service) InvalidatePending(ctx context.Context, identifier string, ch domain.Channel) error {
	n, err := s.store.MarkAllConsumed(ctx, identifier, ch)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("invalidated pending otp records",
			"channel", ch, "count", n)
	}
	return nil
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}

func (s *service) IsChannelEverVerified(ctx context.Context, identifier string, ch domain.Channel) (bool, error) {
	return s.store.ExistsConsumed(ctx, identifier, ch)
}
