// Package service implements the credential registry.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tehnewb/admingate/internal/core/domain"
	"github.com/tehnewb/admingate/pkg/token"
)

// Store is the optional persistence backend for administrator records.
// A nil Store keeps the registry memory-only for the process lifetime.
type Store interface {
	// Put writes or overwrites the record stored under rec.Token.
	Put(ctx context.Context, rec *domain.Administrator) error

	// Delete removes the record stored under tok.
	Delete(ctx context.Context, tok string) error

	// Load returns every stored record plus the token generator's
	// persisted high-water index.
	Load(ctx context.Context) ([]*domain.Administrator, uint64, error)

	// PutHighWater persists the token generator position so a restarted
	// process never reissues a consumed index.
	PutHighWater(ctx context.Context, n uint64) error
}

// Registry owns all administrator records. It is shared mutable state
// across every connection goroutine; a single RWMutex guards the token
// map so that a rotation (delete old key, insert new key) is atomic with
// respect to concurrent lookups: a reader never observes the record
// under neither key, nor under both.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]*domain.Administrator

	gen    *token.Generator
	store  Store
	logger *slog.Logger
}

// NewRegistry builds a registry, replaying persisted records when a
// store is supplied.
func NewRegistry(ctx context.Context, store Store, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		byToken: make(map[string]*domain.Administrator),
		gen:     token.NewGenerator(),
		store:   store,
		logger:  logger,
	}

	if store != nil {
		records, highWater, err := store.Load(ctx)
		if err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
		for _, rec := range records {
			rec.AccessGranted = false
			r.byToken[rec.Token] = rec
		}
		r.gen.Advance(highWater)
		logger.Info("credential registry restored",
			"records", len(records),
			"token_index", highWater)
	}

	return r, nil
}

// Create generates a token for a new administrator and inserts the
// record. The returned token is the credential the operator distributes
// out of band.
func (r *Registry) Create(ctx context.Context, username string) (string, error) {
	tok, err := r.gen.Next()
	if err != nil {
		return "", domain.ErrInternal.WithCause(err)
	}

	rec := &domain.Administrator{Username: username, Token: tok}

	r.mu.Lock()
	r.byToken[tok] = rec
	snapshot := *rec
	r.mu.Unlock()

	r.persist(ctx, &snapshot)
	return tok, nil
}

// Remove deletes the record under presentedToken when its username
// matches. A miss (stale token or wrong username) leaves the registry
// untouched and returns ErrRegistryMiss; callers on the wire path drop
// it silently.
func (r *Registry) Remove(ctx context.Context, presentedToken, username string) error {
	r.mu.Lock()
	rec, ok := r.byToken[presentedToken]
	if !ok || rec.Username != username {
		r.mu.Unlock()
		return domain.ErrRegistryMiss
	}
	delete(r.byToken, presentedToken)
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, presentedToken); err != nil {
			r.logger.Warn("failed to delete persisted record", "error", err)
		}
	}
	return nil
}

// Rotate replaces the token of the record under oldToken. The re-key is
// a single critical section: delete the old key and insert the new one
// before any reader can run.
func (r *Registry) Rotate(ctx context.Context, oldToken, username string) (string, error) {
	newToken, err := r.gen.Next()
	if err != nil {
		return "", domain.ErrInternal.WithCause(err)
	}

	r.mu.Lock()
	rec, ok := r.byToken[oldToken]
	if !ok || rec.Username != username {
		r.mu.Unlock()
		return "", domain.ErrRegistryMiss
	}
	delete(r.byToken, oldToken)
	rec.Token = newToken
	r.byToken[newToken] = rec
	snapshot := *rec
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, oldToken); err != nil {
			r.logger.Warn("failed to delete persisted record", "error", err)
		}
	}
	r.persist(ctx, &snapshot)
	return newToken, nil
}

// Get looks up a token. Misses return the domain.Invalid sentinel, never
// nil; hits return a snapshot copy so callers read record fields without
// holding the registry lock.
func (r *Registry) Get(tok string) *domain.Administrator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byToken[tok]
	if !ok {
		return domain.Invalid
	}
	snapshot := *rec
	return &snapshot
}

// Authorize is the gate check: the presented token must exist and its
// record's username must equal the presented username exactly. Success
// flips AccessGranted on the live record and returns a snapshot; each
// failure mode returns its own security error.
func (r *Registry) Authorize(tok, username string) (*domain.Administrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byToken[tok]
	if !ok {
		return nil, domain.ErrUnknownToken
	}
	if !token.Equal(rec.Username, username) {
		return nil, domain.ErrUsernameMismatch
	}

	rec.AccessGranted = true
	snapshot := *rec
	return &snapshot, nil
}

// ClearAccess resets AccessGranted when the connection that earned it
// closes. A stale or rotated token is ignored.
func (r *Registry) ClearAccess(tok string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.byToken[tok]; ok {
		rec.AccessGranted = false
	}
}

// Count returns the number of live records.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}

// persist writes rec and the generator high-water mark through to the
// store. Persistence faults are logged, not fatal: the in-memory map is
// authoritative while the process lives.
func (r *Registry) persist(ctx context.Context, rec *domain.Administrator) {
	if r.store == nil {
		return
	}
	if err := r.store.Put(ctx, rec); err != nil {
		r.logger.Warn("failed to persist record", "username", rec.Username, "error", err)
		return
	}
	if err := r.store.PutHighWater(ctx, r.gen.HighWater()); err != nil {
		r.logger.Warn("failed to persist token index", "error", err)
	}
}
