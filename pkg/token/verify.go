// Package token generates and verifies administrator bearer tokens.
package token

import "crypto/subtle"

// Equal compares two tokens in constant time to prevent timing attacks
// against credential lookups.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Mask renders a token safe for logging: first and last four characters
// with the middle elided. Short or malformed values are fully redacted.
func Mask(tok string) string {
	if len(tok) < 12 {
		return "***"
	}
	return tok[:4] + "..." + tok[len(tok)-4:]
}
