package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Santiago1809/auth-ms/internal/domain"
)

// OTPRepo persists OTP records. Records accumulate as history per identifier;
// consumption flips the verified flag in place and the sweeper deletes rows
// strictly past expiry.
type OTPRepo struct {
	pool *pgxpool.Pool
}

func NewOTPRepo(pool *pgxpool.Pool) *OTPRepo {
	return &OTPRepo{pool: pool}
}

const otpColumns = `id, user_id, email, phone_number, code, is_magic_link, expires_at, verified, created_at`

// identifierColumn maps a channel to the column holding its identifier.
// Channel is a closed enum, so interpolating the name is safe.
func identifierColumn(ch domain.Channel) string {
	if ch == domain.ChannelEmail {
		return "email"
	}
	return "phone_number"
}

func (r *OTPRepo) Create(ctx context.Context, rec *domain.OTPRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otps (id, user_id, email, phone_number, code, is_magic_link, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.UserID, rec.Email, rec.PhoneNumber, rec.Code, rec.IsMagicLink,
		rec.ExpiresAt, rec.Consumed, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create otp record: %w", err)
	}
	return nil
}

// FindLatestMatching returns the most recently created unconsumed, unexpired
// record for (identifier, channel) whose code matches. The strict
// expires_at > now() predicate is the complement of DeleteExpired's, so a
// record can never be both verifiable and purgeable.
func (r *OTPRepo) FindLatestMatching(ctx context.Context, identifier string, ch domain.Channel, code string) (*domain.OTPRecord, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM otps
		WHERE %s = $1 AND code = $2 AND verified = FALSE AND expires_at > now()
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, otpColumns, identifierColumn(ch))

	rec, err := scanOTP(r.pool.QueryRow(ctx, q, identifier, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find otp record: %w", err)
	}
	return rec, nil
}

// FindMagicLink looks up an unconsumed, unexpired email magic-link record by
// token alone, for the link-click flow where no identifier accompanies the
// request.
func (r *OTPRepo) FindMagicLink(ctx context.Context, token string) (*domain.OTPRecord, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM otps
		WHERE code = $1 AND verified = FALSE AND expires_at > now() AND email IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, otpColumns)

	rec, err := scanOTP(r.pool.QueryRow(ctx, q, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("magic link token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find magic link: %w", err)
	}
	return rec, nil
}

// MarkConsumed flips verified on a single record, conditioned on it still
// being unconsumed. Returns false when a concurrent verify won the race;
// the row update, not a transaction, is the arbiter of at-most-once use.
func (r *OTPRepo) MarkConsumed(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE otps SET verified = TRUE WHERE id = $1 AND verified = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("mark otp consumed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkAllConsumed bulk-invalidates every pending record for the identifier
// and channel. Used before issuing a fresh code so only the newest is valid.
func (r *OTPRepo) MarkAllConsumed(ctx context.Context, identifier string, ch domain.Channel) (int64, error) {
	q := fmt.Sprintf(`UPDATE otps SET verified = TRUE WHERE %s = $1 AND verified = FALSE`,
		identifierColumn(ch))
	tag, err := r.pool.Exec(ctx, q, identifier)
	if err != nil {
		return 0, fmt.Errorf("invalidate pending otps: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes all records strictly past expiry, consumed or not.
func (r *OTPRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExistsConsumed reports whether any record for the identifier and channel
// was ever consumed. Secondary guard for sensitive follow-ups like password
// changes.
func (r *OTPRepo) ExistsConsumed(ctx context.Context, identifier string, ch domain.Channel) (bool, error) {
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM otps WHERE %s = $1 AND verified = TRUE)`,
		identifierColumn(ch))
	var exists bool
	if err := r.pool.QueryRow(ctx, q, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("check consumed otps: %w", err)
	}
	return exists, nil
}

func scanOTP(row pgx.Row) (*domain.OTPRecord, error) {
	var rec domain.OTPRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Email, &rec.PhoneNumber, &rec.Code,
		&rec.IsMagicLink, &rec.ExpiresAt, &rec.Consumed, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
