// Package keyseal provides the asymmetric sealing primitives behind the
// AdminGate handshake.
//
// The server generates one RSA key pair per connection, publishes the
// public key in PKIX/DER form, and opens the client's single OAEP-sealed
// credential blob with the matching private key. The Provider interface
// exists so the server owns its crypto engine as an injected instance;
// tests substitute a stub provider.
package keyseal

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
)

// DefaultBits is the default RSA modulus size for session key pairs.
const DefaultBits = 2048

var (
	// ErrBadPublicKey indicates key material that does not decode to an
	// RSA public key.
	ErrBadPublicKey = errors.New("keyseal: malformed public key")

	// ErrOpenFailed indicates undecryptable ciphertext (wrong key,
	// truncation, or tampering).
	ErrOpenFailed = errors.New("keyseal: cannot open ciphertext")

	// ErrPlaintextTooLarge indicates a payload exceeding the OAEP limit
	// for the key size.
	ErrPlaintextTooLarge = errors.New("keyseal: plaintext exceeds key capacity")
)

// Session holds one connection's private half of the handshake. It is
// owned exclusively by that connection's handler and discarded on close.
type Session interface {
	// PublicKeyDER returns the session public key in PKIX/DER encoding,
	// the standard interchange form sent as the first frame.
	PublicKeyDER() []byte

	// Open decrypts a ciphertext sealed against this session's public
	// key. Failures return ErrOpenFailed without leaking key material.
	Open(ciphertext []byte) ([]byte, error)
}

// Provider mints handshake sessions. One Provider is constructed at
// server startup and shared by every connection handler.
type Provider interface {
	NewSession() (Session, error)
}

// RSAProvider is the production Provider: fresh RSA key pairs with
// OAEP-SHA256 sealing.
type RSAProvider struct {
	bits int
}

// NewRSAProvider returns a provider generating keys of the given modulus
// size. Sizes below DefaultBits are raised to it.
func NewRSAProvider(bits int) *RSAProvider {
	if bits < DefaultBits {
		bits = DefaultBits
	}
	return &RSAProvider{bits: bits}
}

// NewSession generates a fresh key pair. CPU-bound but fast enough to run
// inline on the connection goroutine for a single round trip.
func (p *RSAProvider) NewSession() (Session, error) {
	key, err := rsa.GenerateKey(rand.Reader, p.bits)
	if err != nil {
		return nil, fmt.Errorf("keyseal: generate key pair: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("keyseal: encode public key: %w", err)
	}

	return &rsaSession{key: key, der: der}, nil
}

type rsaSession struct {
	key *rsa.PrivateKey
	der []byte
}

func (s *rsaSession) PublicKeyDER() []byte {
	return s.der
}

func (s *rsaSession) Open(ciphertext []byte) ([]byte, error) {
	plain, err := rsa.DecryptOAEP(sha256.New(), nil, s.key, ciphertext, nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

// ParsePublicKey decodes PKIX/DER key material into an RSA public key.
// Clients call this on the server's first frame and must fail fast when
// it does not parse.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrBadPublicKey
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrBadPublicKey
	}
	return rsaPub, nil
}

// Seal encrypts plaintext against pub with OAEP-SHA256. This is the
// client half of the handshake.
func Seal(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if len(plaintext) > MaxPlaintext(pub) {
		return nil, ErrPlaintextTooLarge
	}
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("keyseal: seal: %w", err)
	}
	return out, nil
}

// MaxPlaintext returns the largest payload Seal accepts for pub.
func MaxPlaintext(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}
