package client

import (
	"sync"

	"github.com/tehnewb/admingate/pkg/indexpool"
)

// maxCorrelations bounds in-flight request identifiers to the 16-bit
// wire field.
const maxCorrelations = 1 << 16

// Callback consumes one response payload.
type Callback func(payload []byte)

// Talker matches asynchronous responses to requests through 16-bit
// correlation identifiers. Identifiers come from a free list and are
// reused only after completion or cancellation, so an in-flight
// request can never collide with a new one. Administrative commands
// are fire-and-forget and do not use correlation; the talker serves
// request/response extensions of the protocol.
type Talker struct {
	mu      sync.Mutex
	ids     *indexpool.Pool
	pending map[uint16]Callback
}

// NewTalker creates an empty correlation table.
func NewTalker() *Talker {
	return &Talker{
		ids:     indexpool.New(maxCorrelations),
		pending: make(map[uint16]Callback),
	}
}

// Register allocates a correlation identifier and stores the callback
// under it. It fails with indexpool.ErrExhausted when all 65536
// identifiers are in flight.
func (t *Talker) Register(cb Callback) (uint16, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.ids.Acquire()
	if err != nil {
		return 0, err
	}
	id := uint16(idx)
	t.pending[id] = cb
	return id, nil
}

// Complete invokes and removes the callback registered under id,
// returning the identifier to the free list. Unknown identifiers
// report false; stale responses are dropped by the caller.
func (t *Talker) Complete(id uint16, payload []byte) bool {
	t.mu.Lock()
	cb, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
		t.ids.Release(uint64(id))
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	cb(payload)
	return true
}

// Cancel removes a registration without invoking its callback.
func (t *Talker) Cancel(id uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; ok {
		delete(t.pending, id)
		t.ids.Release(uint64(id))
	}
}

// Pending reports the number of in-flight registrations.
func (t *Talker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
