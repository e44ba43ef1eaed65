package domain

import "time"

// Channel identifies which contact point a verification record targets.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// CodeLength is the fixed width of every issued code, numeric OTP or
// magic-link token alike. It matches the VARCHAR(6) code column.
const CodeLength = 6

// OTPRecord is one issued verification credential.
// Exactly one of Email/PhoneNumber is populated, according to the channel.
// A record is terminal once Consumed is true; it is never re-verified or
// re-used, and only expired rows may be purged.
type OTPRecord struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id,omitempty"`
	Email       *string   `json:"email,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Code        string    `json:"-"`
	IsMagicLink bool      `json:"is_magic_link"`
	ExpiresAt   time.Time `json:"expires_at"`
	Consumed    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identifier returns the channel identifier the record was issued for.
func (r *OTPRecord) Identifier() string {
	if r.Email != nil {
		return *r.Email
	}
	if r.PhoneNumber != nil {
		return *r.PhoneNumber
	}
	return ""
}

// Channel reports which channel the record belongs to, derived from the
// populated identifier column.
func (r *OTPRecord) Channel() Channel {
	if r.Email != nil {
		return ChannelEmail
	}
	return ChannelPhone
}

// Expired reports whether the record is past its expiry at the given instant.
// Verification uses the strict complement (ExpiresAt > now), so a record is
// never both verifiable and purgeable.
func (r *OTPRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
