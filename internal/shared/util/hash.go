package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a short stable digest of an identifier such as an email
// address, for logs that must not carry the value itself. Case and
// surrounding space are ignored.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(sum[:8])
}
