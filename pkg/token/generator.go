// Package token generates and verifies administrator bearer tokens.
package token

import (
	"crypto/sha512"
	"encoding/base64"
	"strconv"

	"github.com/tehnewb/admingate/pkg/indexpool"
)

// Length is the encoded length of every token: a 64-byte SHA-512 digest
// in standard Base64 (88 characters including padding).
const Length = 88

// Generator issues unique bearer tokens. Each token consumes one index
// from the underlying pool; indices are never returned, so no two tokens
// from one generator ever collide.
//
// Generator is safe for concurrent use.
type Generator struct {
	pool *indexpool.Pool
}

// NewGenerator returns a Generator starting from index zero.
func NewGenerator() *Generator {
	return &Generator{pool: indexpool.New(0)}
}

// Next derives and returns a fresh token.
func (g *Generator) Next() (string, error) {
	idx, err := g.pool.Acquire()
	if err != nil {
		return "", err
	}
	return FromIndex(idx), nil
}

// HighWater returns the number of indices consumed so far. Persisting it
// lets a restarted generator skip indices already turned into tokens.
func (g *Generator) HighWater() uint64 {
	return g.pool.HighWater()
}

// Advance skips the generator forward so the next token uses an index of
// at least n.
func (g *Generator) Advance(n uint64) {
	g.pool.Advance(n)
}

// FromIndex derives the token for a given index: Base64 of the SHA-512
// digest of the index's decimal text.
func FromIndex(idx uint64) string {
	sum := sha512.Sum512([]byte(strconv.FormatUint(idx, 10)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// WellFormed reports whether s has the shape of a generated token. It
// says nothing about whether the token is live in any registry.
func WellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	return err == nil && len(raw) == sha512.Size
}
