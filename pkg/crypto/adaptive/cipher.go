// Package adaptive provides authenticated encryption with automatic
// algorithm selection: AES-GCM where the architecture carries hardware
// AES support, ChaCha20-Poly1305 elsewhere. AdminGate uses it to encrypt
// administrator records at rest.
package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm identifies the selected AEAD construction.
type Algorithm string

const (
	AESGCM           Algorithm = "aes-gcm"
	ChaCha20Poly1305 Algorithm = "chacha20-poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

var (
	ErrBadKeySize        = errors.New("adaptive: key must be 32 bytes")
	ErrCiphertextInvalid = errors.New("adaptive: ciphertext invalid or tampered")
)

// Cipher seals and opens byte blobs. The nonce is generated per call and
// prepended to the ciphertext, so a Cipher carries no per-message state
// and is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
	alg  Algorithm
}

// New selects the best algorithm for the running hardware.
func New(key []byte) (*Cipher, error) {
	if preferAES() {
		return NewWith(key, AESGCM)
	}
	return NewWith(key, ChaCha20Poly1305)
}

// NewWith constructs a Cipher with an explicit algorithm.
func NewWith(key []byte, alg Algorithm) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeySize
	}

	var aead cipher.AEAD
	var err error
	switch alg {
	case AESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("adaptive: init %s: %w", alg, err)
	}

	return &Cipher{aead: aead, alg: alg}, nil
}

// Algorithm returns the construction in use.
func (c *Cipher) Algorithm() Algorithm {
	return c.alg
}

// Seal encrypts plaintext, binding additional to the authentication tag.
// Output layout: nonce || ciphertext || tag.
func (c *Cipher) Seal(plaintext, additional []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open decrypts a Seal output, verifying the tag against additional.
func (c *Cipher) Open(sealed, additional []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < ns+c.aead.Overhead() {
		return nil, ErrCiphertextInvalid
	}
	plain, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], additional)
	if err != nil {
		return nil, ErrCiphertextInvalid
	}
	return plain, nil
}

// preferAES reports whether the architecture has accelerated AES. Go's
// crypto/aes uses AES-NI on amd64 and the ARM crypto extensions on arm64.
func preferAES() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}
