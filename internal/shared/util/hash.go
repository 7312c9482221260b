package util

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLen = 32

// Fingerprint returns a stable short identifier for arbitrary content,
// used as the content-addressed cache key suffix for analysis results.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// HashKey returns a full-length hex digest for key material that must not collide.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
