package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps a user ID to a stable filesystem- and S3-safe segment.
// User IDs may contain provider prefixes like "google:"; hashing keeps the
// key space uniform regardless of origin.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
