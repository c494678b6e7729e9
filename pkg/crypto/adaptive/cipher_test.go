package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestCipher_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AESGCM, ChaCha20Poly1305} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewWith(testKey(), alg)
			if err != nil {
				t.Fatalf("NewWith(%s) error = %v", alg, err)
			}

			plain := []byte(`{"username":"alice"}`)
			ad := []byte("record:alice")

			sealed, err := c.Seal(plain, ad)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}

			got, err := c.Open(sealed, ad)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Error("Open(Seal(p)) != p")
			}
		})
	}
}

func TestCipher_TamperDetection(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sealed, err := c.Seal([]byte("payload"), nil)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	t.Run("flipped bit", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0x01
		if _, err := c.Open(bad, nil); !errors.Is(err, ErrCiphertextInvalid) {
			t.Errorf("Open(tampered) error = %v, want ErrCiphertextInvalid", err)
		}
	})

	t.Run("wrong additional data", func(t *testing.T) {
		if _, err := c.Open(sealed, []byte("other")); !errors.Is(err, ErrCiphertextInvalid) {
			t.Errorf("Open(wrong ad) error = %v, want ErrCiphertextInvalid", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		if _, err := c.Open(sealed[:4], nil); !errors.Is(err, ErrCiphertextInvalid) {
			t.Errorf("Open(truncated) error = %v, want ErrCiphertextInvalid", err)
		}
	})
}

func TestCipher_NonceFreshness(t *testing.T) {
	c, _ := New(testKey())
	a, _ := c.Seal([]byte("same"), nil)
	b, _ := c.Seal([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("Seal() produced identical output twice; nonce not fresh")
	}
}

func TestNewWith_BadKey(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := NewWith(make([]byte, n), AESGCM); !errors.Is(err, ErrBadKeySize) {
			t.Errorf("NewWith(%d-byte key) error = %v, want ErrBadKeySize", n, err)
		}
	}
}

func TestNewWith_UnknownAlgorithm(t *testing.T) {
	if _, err := NewWith(testKey(), Algorithm("rot13")); err == nil {
		t.Error("NewWith(rot13) did not fail")
	}
}
