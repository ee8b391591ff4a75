package main

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/storage"
)

const breakdownIdleTTL = 2 * time.Hour

// breakdownEntry is one open dialog. mu serialises every edit on the session;
// closed is set under mu when the dialog is calculated or discarded.
type breakdownEntry struct {
	id       string
	product  storage.Product
	currency string

	mu       sync.Mutex
	session  *pricing.Session
	sheet    pricing.Sheet
	lastUsed time.Time
	closed   bool
}

// lock acquires e.mu and reports whether the entry is still open. The lock is
// released again when it is not.
func (e *breakdownEntry) lock() bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	return true
}

type breakdownRegistry struct {
	mu      sync.Mutex
	entries map[string]*breakdownEntry
	ttl     time.Duration
	now     func() time.Time
}

func newBreakdownRegistry(ttl time.Duration) *breakdownRegistry {
	return &breakdownRegistry{
		entries: make(map[string]*breakdownEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// open seeds a sheet for the product's cost and registers it under a fresh id.
func (r *breakdownRegistry) open(product storage.Product, defaults storage.PricingDefaults) *breakdownEntry {
	e := &breakdownEntry{
		id:       uuid.NewString(),
		product:  product,
		currency: defaults.Currency,
	}
	e.session = pricing.NewSession(product.Cost, defaults.Defaults, pricing.Hooks{
		OnChange: func(sheet pricing.Sheet) { e.sheet = sheet },
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	e.lastUsed = r.now()
	r.entries[e.id] = e
	return e
}

// get returns the entry and marks it as used. Entries idle for longer than the
// ttl are dropped and reported as missing.
func (r *breakdownRegistry) get(id string) (*breakdownEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(e.lastUsed) > r.ttl {
		delete(r.entries, id)
		return nil, false
	}
	e.lastUsed = now
	return e, true
}

func (r *breakdownRegistry) close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

func (r *breakdownRegistry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *breakdownRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
