package routing

import (
	"sync"

	"github.com/hupe1980/learner/protocol"
)

// Pool is a weighted set of server connections. A server added with weight
// w occupies w consecutive slots of a flat selection array, so it receives
// w times the share of a weight one server.
//
// Membership changes reshuffle ownership; routing is only stable for an
// unchanged pool.
type Pool[C any] struct {
	mu      sync.RWMutex
	slots   []C
	members []C
}

// NewPool returns an empty pool.
func NewPool[C any]() *Pool[C] {
	return &Pool[C]{}
}

// Add appends weight slots referencing conn.
func (p *Pool[C]) Add(conn C, weight int) error {
	if weight <= 0 {
		return ErrInvalidWeight
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for range weight {
		p.slots = append(p.slots, conn)
	}

	p.members = append(p.members, conn)

	return nil
}

// Len returns the number of slots.
func (p *Pool[C]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.slots)
}

// Members returns each added connection once, in insertion order.
func (p *Pool[C]) Members() []C {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]C(nil), p.members...)
}

// Index returns the slot that owns req.
func (p *Pool[C]) Index(req *protocol.Request) (int, error) {
	ref, err := ReferenceOf(req)
	if err != nil {
		return 0, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.indexLocked(ref)
}

// ServerFor returns the connection that owns req. It is a pure function of
// the request fields and the pool contents.
func (p *Pool[C]) ServerFor(req *protocol.Request) (C, error) {
	var zero C

	ref, err := ReferenceOf(req)
	if err != nil {
		return zero, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	i, err := p.indexLocked(ref)
	if err != nil {
		return zero, err
	}

	return p.slots[i], nil
}

func (p *Pool[C]) indexLocked(ref protocol.Reference) (int, error) {
	if len(p.slots) == 0 {
		return 0, ErrEmptyPool
	}

	return int(Slot(ref) % uint64(len(p.slots))), nil //nolint:gosec // bounded by len
}
