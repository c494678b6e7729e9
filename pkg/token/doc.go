// Package token generates and verifies administrator bearer tokens.
//
// Tokens are derived from a monotonically issued unique index: the
// SHA-512 digest of the index's decimal text, Base64 encoded. Uniqueness
// of the input index plus the collision resistance of the hash yields
// unpredictable, fixed-length credentials without consuming a secure
// random source per token.
package token
