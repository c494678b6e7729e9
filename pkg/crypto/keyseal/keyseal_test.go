package keyseal

import (
	"bytes"
	"errors"
	"testing"
)

// One key pair per test binary run; RSA generation dominates test time.
var testSession Session

func session(t *testing.T) Session {
	t.Helper()
	if testSession == nil {
		s, err := NewRSAProvider(DefaultBits).NewSession()
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		testSession = s
	}
	return testSession
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := session(t)
	pub, err := ParsePublicKey(s.PublicKeyDER())
	if err != nil {
		t.Fatalf("ParsePublicKey() error = %v", err)
	}

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"single byte", 1},
		{"credential sized", 128},
		{"max for key", MaxPlaintext(pub)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := bytes.Repeat([]byte{0xA5}, tt.size)
			ct, err := Seal(pub, plain)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}

			got, err := s.Open(ct)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Error("Open(Seal(p)) != p")
			}
		})
	}
}

func TestSeal_PlaintextTooLarge(t *testing.T) {
	s := session(t)
	pub, _ := ParsePublicKey(s.PublicKeyDER())

	over := make([]byte, MaxPlaintext(pub)+1)
	if _, err := Seal(pub, over); !errors.Is(err, ErrPlaintextTooLarge) {
		t.Errorf("Seal(oversize) error = %v, want ErrPlaintextTooLarge", err)
	}
}

func TestOpen_GarbageCiphertext(t *testing.T) {
	s := session(t)

	tests := []struct {
		name string
		ct   []byte
	}{
		{"empty", nil},
		{"short", []byte{1, 2, 3}},
		{"key sized noise", bytes.Repeat([]byte{0xFF}, 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.ct); !errors.Is(err, ErrOpenFailed) {
				t.Errorf("Open() error = %v, want ErrOpenFailed", err)
			}
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	a := session(t)
	b, err := NewRSAProvider(DefaultBits).NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	pubA, _ := ParsePublicKey(a.PublicKeyDER())
	ct, err := Seal(pubA, []byte("credentials"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := b.Open(ct); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Open() with wrong key error = %v, want ErrOpenFailed", err)
	}
}

func TestParsePublicKey_Malformed(t *testing.T) {
	s := session(t)
	tests := []struct {
		name string
		der  []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a key")},
		{"truncated", s.PublicKeyDER()[:10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePublicKey(tt.der); !errors.Is(err, ErrBadPublicKey) {
				t.Errorf("ParsePublicKey() error = %v, want ErrBadPublicKey", err)
			}
		})
	}
}

func TestProvider_FreshKeysPerSession(t *testing.T) {
	p := NewRSAProvider(DefaultBits)
	a, err := p.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	b, err := p.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if bytes.Equal(a.PublicKeyDER(), b.PublicKeyDER()) {
		t.Error("provider reused a key pair across sessions")
	}
}
