// Package indexpool provides a monotonic free-index pool.
package indexpool

import (
	"errors"
	"sync"
)

// ErrExhausted indicates every index up to the pool limit is in use.
var ErrExhausted = errors.New("indexpool: no free index")

// Pool issues unique uint64 indices. A freshly created pool hands out
// 0, 1, 2, ... in order; released indices are reused (most recently
// released first) before the high-water mark advances.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu    sync.Mutex
	next  uint64
	limit uint64 // 0 means unbounded
	free  []uint64
}

// New returns a pool limited to limit live indices. A limit of 0 means
// unbounded.
func New(limit uint64) *Pool {
	return &Pool{limit: limit}
}

// Acquire returns the next free index. It fails with ErrExhausted when
// the pool limit is reached and nothing has been released.
func (p *Pool) Acquire() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return idx, nil
	}
	if p.limit != 0 && p.next >= p.limit {
		return 0, ErrExhausted
	}
	idx := p.next
	p.next++
	return idx, nil
}

// Release returns idx to the pool for reuse. Releasing an index that was
// never acquired, or twice, corrupts the uniqueness guarantee; callers
// own that discipline.
func (p *Pool) Release(idx uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, idx)
}

// HighWater returns the number of indices ever issued from the monotonic
// sequence. Used to persist the generator position across restarts.
func (p *Pool) HighWater() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Advance moves the monotonic sequence forward so the next fresh index is
// at least n. Indices below n that were never issued in this process are
// skipped, never reused. Advance is how a restarted process avoids
// reissuing indices recorded by a previous run.
func (p *Pool) Advance(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.next {
		p.next = n
	}
}
