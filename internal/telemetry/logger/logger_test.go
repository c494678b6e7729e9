package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tehnewb/admingate/pkg/token"
)

func captureLog(t *testing.T, cfg Config, fn func(logMsg func(msg string, args ...any))) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	log := New(cfg)
	fn(func(msg string, args ...any) { log.Info(msg, args...) })

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v: %s", err, buf.String())
	}
	return entry
}

func TestNew_JSONOutput(t *testing.T) {
	entry := captureLog(t, DefaultConfig(), func(logMsg func(string, ...any)) {
		logMsg("hello", "remote", "10.0.0.1:9000")
	})

	if entry["msg"] != "hello" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["remote"] != "10.0.0.1:9000" {
		t.Errorf("remote = %v", entry["remote"])
	}
}

func TestRedaction_TokenValue(t *testing.T) {
	tok := token.FromIndex(12345)
	entry := captureLog(t, DefaultConfig(), func(logMsg func(string, ...any)) {
		logMsg("authorized", "presented", tok)
	})

	got, _ := entry["presented"].(string)
	if got == tok {
		t.Fatal("full token reached the log stream")
	}
	if !strings.Contains(got, "...") {
		t.Errorf("token not masked: %q", got)
	}
}

func TestRedaction_SensitiveKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"token", redactedValue},
		{"api_key", redactedValue},
		{"password", redactedValue},
		{"username", "alice"}, // not sensitive
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry := captureLog(t, DefaultConfig(), func(logMsg func(string, ...any)) {
				logMsg("m", tt.key, "alice")
			})
			if entry[tt.key] != tt.want {
				t.Errorf("entry[%q] = %v, want %q", tt.key, entry[tt.key], tt.want)
			}
		})
	}
}

func TestSetLevel_Dynamic(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug line emitted at info level")
	}

	SetLevel("debug")
	defer SetLevel("info")
	log.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug line suppressed after SetLevel(debug)")
	}
	if Level() != "debug" {
		t.Errorf("Level() = %q", Level())
	}
}

func TestConnID_Context(t *testing.T) {
	id := NewConnID()
	if len(id) != 26 {
		t.Errorf("NewConnID() length = %d, want 26", len(id))
	}
	if id == NewConnID() {
		t.Error("NewConnID() repeated")
	}

	ctx := WithConnID(context.Background(), id)
	if got := ConnIDFromContext(ctx); got != id {
		t.Errorf("ConnIDFromContext() = %q", got)
	}
	if got := ConnIDFromContext(context.Background()); got != "" {
		t.Errorf("ConnIDFromContext(empty) = %q", got)
	}

	var buf bytes.Buffer
	log := New(Config{Output: &buf})
	L(ctx, log).Info("with conn")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if entry["conn_id"] != id {
		t.Errorf("conn_id = %v", entry["conn_id"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"token":      true,
		"old_token":  true,
		"secret_key": true,
		"username":   false,
		"remote":     false,
	} {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}
