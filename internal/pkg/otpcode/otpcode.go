// Package otpcode generates the short-lived credentials issued to users:
// numeric OTP codes and alphanumeric magic-link tokens. Pure functions, no
// I/O beyond the system entropy source.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the fixed width of every code, chosen to fit the fixed-width
// storage column shared by both kinds.
const Length = 6

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Numeric returns a uniformly random 6-digit decimal code in
// [100000, 999999]. The first digit is always 1-9, so the string never
// carries a leading zero.
func Numeric() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// MagicLink returns a 6-character token drawn uniformly, with replacement,
// from the 62-character alphanumeric alphabet.
func MagicLink() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", fmt.Errorf("generate magic link token: %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// Generate returns a magic-link token or a numeric OTP depending on kind.
func Generate(isMagicLink bool) (string, error) {
	if isMagicLink {
		return MagicLink()
	}
	return Numeric()
}
