package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking infrastructure details. Expected verification failures (wrong code,
// expired, already used, no record) are never errors; they collapse into a
// single false result so callers cannot distinguish the cases.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrDelivery marks an email or WhatsApp transport failure. It is
	// non-fatal to the surrounding request: the record was already
	// persisted and the user can request a resend.
	ErrDelivery = errors.New("delivery failed")
)
