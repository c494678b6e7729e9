package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	e := NewDomainError("AG-TEST-0001", "something broke")
	if got := e.Error(); got != "[AG-TEST-0001] something broke" {
		t.Errorf("Error() = %q", got)
	}

	with := e.WithDetails("token t1")
	if !strings.Contains(with.Error(), "token t1") {
		t.Errorf("Error() with details = %q", with.Error())
	}
}

func TestDomainError_Is(t *testing.T) {
	err := ErrUnknownToken.WithDetails("from 10.0.0.1")
	if !errors.Is(err, ErrUnknownToken) {
		t.Error("errors.Is() = false for same code")
	}
	if errors.Is(err, ErrUsernameMismatch) {
		t.Error("errors.Is() = true for different code")
	}
	if errors.Is(err, errors.New("plain")) {
		t.Error("errors.Is() = true for non-domain error")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrStorage.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not reach the cause")
	}

	wrapped := fmt.Errorf("persist record: %w", err)
	var de *DomainError
	if !errors.As(wrapped, &de) {
		t.Fatal("errors.As() failed through fmt wrapping")
	}
	if de.Code != ErrStorage.Code {
		t.Errorf("unwrapped code = %s", de.Code)
	}
}

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(ErrRegistryMiss); got != "AG-REG-4040" {
		t.Errorf("ErrorCode() = %q", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Errorf("ErrorCode(plain) = %q, want empty", got)
	}
	if got := ErrorCode(nil); got != "" {
		t.Errorf("ErrorCode(nil) = %q, want empty", got)
	}
}
