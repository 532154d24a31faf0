// Package blocklist maintains the set of blocked client identities. The
// set is read on the hot path by every request and written rarely, so a
// read/write mutex guards it.
package blocklist

import (
	"sync"
	"time"

	"github.com/argus-sec/argus/internal/models"
)

// BlockList is a mutable set of blocked identities. Blocks never expire on
// read; removal happens through Unblock or the TTL sweep.
type BlockList struct {
	mu      sync.RWMutex
	entries map[string]models.BlockEntry
}

// New returns an empty block list.
func New() *BlockList {
	return &BlockList{entries: make(map[string]models.BlockEntry)}
}

// Block adds the identity. Re-blocking is idempotent: the entry count does
// not change, but reason and timestamp are refreshed to the latest block.
func (b *BlockList) Block(identity, reason string, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[identity] = models.BlockEntry{
		Identity:  identity,
		Reason:    reason,
		BlockedAt: now,
	}
}

// IsBlocked reports whether the identity is currently blocked.
func (b *BlockList) IsBlocked(identity string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[identity]
	return ok
}

// Get returns the block entry for an identity, if present.
func (b *BlockList) Get(identity string) (models.BlockEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[identity]
	return e, ok
}

// Unblock removes the identity and reports whether it was present.
func (b *BlockList) Unblock(identity string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[identity]
	delete(b.entries, identity)
	return ok
}

// Len reports the number of blocked identities.
func (b *BlockList) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// List returns a copy of all entries for the admin API.
func (b *BlockList) List() []models.BlockEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.BlockEntry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	return out
}

// Sweep removes entries blocked before the cutoff. A zero ttl disables
// expiry and the sweep is a no-op.
func (b *BlockList) Sweep(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-ttl)
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for identity, e := range b.entries {
		if e.BlockedAt.Before(cutoff) {
			delete(b.entries, identity)
			removed++
		}
	}
	return removed
}
