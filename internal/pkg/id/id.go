package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time, which gives the OTP store a deterministic tiebreaker when
// two records for the same identifier share a created_at timestamp.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
