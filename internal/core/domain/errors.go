// Package domain defines the core domain model for AdminGate.
package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error with a structured code. Codes group by
// subsystem: WIRE (framing), HSHK (handshake), AUTH (authorization),
// REG (registry), SYS (system).
type DomainError struct {
	Code    string // e.g. "AG-AUTH-4010"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap supports errors.Unwrap.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches two DomainErrors by code, so sentinel vars work with
// errors.Is even after WithDetails/WithCause copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy carrying additional detail text.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// ErrorCode extracts the code from err when it is a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Framing errors (WIRE): malformed or truncated frame at the codec
// level. Always recoverable by discarding the frame.
var (
	// ErrFraming indicates a truncated or malformed frame body.
	ErrFraming = NewDomainError("AG-WIRE-4000", "malformed frame")

	// ErrFrameTooLarge indicates a frame exceeding the transport limit.
	ErrFrameTooLarge = NewDomainError("AG-WIRE-4001", "frame exceeds size limit")
)

// Handshake errors (HSHK): failures before authorization.
var (
	// ErrHandshake indicates undecryptable ciphertext or missing
	// credential fields in a decrypted payload.
	ErrHandshake = NewDomainError("AG-HSHK-4000", "handshake failed")

	// ErrBadPublicKey indicates the client could not decode the server's
	// key frame into usable key material.
	ErrBadPublicKey = NewDomainError("AG-HSHK-4001", "malformed public key")

	// ErrHandshakeTimeout indicates the peer never completed the
	// credential exchange within the configured bound.
	ErrHandshakeTimeout = NewDomainError("AG-HSHK-4080", "handshake timed out")
)

// Authorization errors (AUTH): valid ciphertext, rejected credentials.
// Always fatal to the connection and logged as security events.
var (
	// ErrUnknownToken indicates the presented token matches no record.
	ErrUnknownToken = NewDomainError("AG-AUTH-4010", "unknown token")

	// ErrUsernameMismatch indicates a live token presented with the
	// wrong username.
	ErrUsernameMismatch = NewDomainError("AG-AUTH-4011", "username mismatch")
)

// Registry errors (REG).
var (
	// ErrRegistryMiss indicates a mutating command referencing a
	// token/username pair with no matching record. Never surfaced to the
	// peer; the operation is a wire-level no-op.
	ErrRegistryMiss = NewDomainError("AG-REG-4040", "no matching administrator record")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected server-side fault.
	ErrInternal = NewDomainError("AG-SYS-5000", "internal error")

	// ErrStorage indicates a persistence-layer fault.
	ErrStorage = NewDomainError("AG-SYS-5001", "storage error")
)
