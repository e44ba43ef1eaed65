package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Santiago1809/auth-ms/internal/domain"
)

// UserRepo persists user accounts and their per-channel verified flags.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, email, phone_number, country_code, role,
	email_verified, phone_verified, password_hash, created_at, updated_at`

// phoneMatch matches either the stored local number or the canonical
// normalized identifier (country code without "+" followed by the local
// number), so lookups work with both forms.
const phoneMatch = `(phone_number = $1 OR replace(country_code, '+', '') || phone_number = $1)`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, phone_number, country_code, role,
			email_verified, phone_verified, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.UserID, u.Username, u.Email, u.PhoneNumber, u.CountryCode, u.Role,
		u.EmailVerified, u.PhoneVerified, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("username, email or phone already in use: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.queryOne(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryOne(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns), email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.queryOne(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, phoneMatch), phone)
}

// GetByIdentifier resolves a user by username, email or phone number (local
// or normalized form).
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $1 OR %s`,
		userColumns, phoneMatch)
	return r.queryOne(ctx, q, identifier)
}

// SetChannelVerified flips the verified flag for the channel on the user
// owning the identifier. The flag write belongs to the verification flow;
// the reconciler only reacts to it.
func (r *UserRepo) SetChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error {
	var q string
	if ch == domain.ChannelEmail {
		q = `UPDATE users SET email_verified = TRUE, updated_at = now() WHERE email = $1`
	} else {
		q = fmt.Sprintf(`UPDATE users SET phone_verified = TRUE, updated_at = now() WHERE %s`, phoneMatch)
	}
	tag, err := r.pool.Exec(ctx, q, identifier)
	if err != nil {
		return fmt.Errorf("set %s verified: %w", ch, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user for %s identifier: %w", ch, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE email = $2`,
		passwordHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user by email: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) queryOne(ctx context.Context, q string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&u.UserID, &u.Username, &u.Email, &u.PhoneNumber, &u.CountryCode, &u.Role,
		&u.EmailVerified, &u.PhoneVerified, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
