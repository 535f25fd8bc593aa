package tokens

import "time"

// Purpose distinguishes the two token flows.
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

// TTLs per purpose.
const (
	VerifyTTL = 24 * time.Hour
	ResetTTL  = time.Hour
)

// Token is a single-use opaque token bound to an email identifier.
type Token struct {
	ID         string
	Identifier string
	Token      string
	Purpose    Purpose
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is past its expiry at the given time.
// Validity is strict: a token is usable only while now < ExpiresAt.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
