// Package logger provides structured logging for AdminGate.
package logger

import (
	"log/slog"
	"strings"

	"github.com/tehnewb/admingate/pkg/token"
)

// Key substrings whose string values are masked before emission.
var sensitiveKeyPatterns = []string{
	"token",
	"password",
	"secret",
	"credential",
	"key",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credential material. Values shaped like
// generated bearer tokens are partially masked regardless of key name;
// values under sensitive key names are fully redacted.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		v := a.Value.String()
		if token.WellFormed(v) {
			return slog.String(a.Key, token.Mask(v))
		}

		lower := strings.ToLower(a.Key)
		for _, pat := range sensitiveKeyPatterns {
			if strings.Contains(lower, pat) {
				if v != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	return a
}

// IsSensitiveKey reports whether a key name suggests credential content.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pat := range sensitiveKeyPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
