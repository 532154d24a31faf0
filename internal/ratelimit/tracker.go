package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

// Decision is the outcome of recording one arrival against a window.
type Decision struct {
	Allowed bool
	// Count is the number of arrivals inside the window after recording,
	// including the one just recorded.
	Count int
	Limit int
}

// Pressure reports how full the window is as a [0,1] signal for scoring.
func (d Decision) Pressure() float64 {
	if d.Limit <= 0 {
		return 0
	}
	p := float64(d.Count) / float64(d.Limit)
	if p > 1 {
		p = 1
	}
	return p
}

type shard struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// Tracker maintains a sliding window of arrival timestamps per client
// identity. Identities hash onto independent shards so unrelated clients do
// not contend on one lock; arrivals for the same identity serialize on
// their shard.
type Tracker struct {
	maxRequests int
	window      time.Duration
	shards      [shardCount]*shard
}

// NewTracker builds a tracker allowing maxRequests arrivals per window.
func NewTracker(maxRequests int, window time.Duration) *Tracker {
	t := &Tracker{maxRequests: maxRequests, window: window}
	for i := range t.shards {
		t.shards[i] = &shard{windows: make(map[string][]time.Time)}
	}
	return t
}

func (t *Tracker) shardFor(identity string) *shard {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return t.shards[h.Sum32()%shardCount]
}

// Record purges timestamps older than the window, appends now, and reports
// whether the identity is within its budget. Rejected arrivals still count
// against the window, so a hammering client does not recover by being
// rejected (fail-closed).
func (t *Tracker) Record(identity string, now time.Time) Decision {
	s := t.shardFor(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-t.window)
	win := s.windows[identity]

	// Lazy purge: drop the leading entries that fell out of the window.
	idx := 0
	for idx < len(win) && !win[idx].After(cutoff) {
		idx++
	}
	win = win[idx:]

	win = append(win, now)
	// The rejected surplus arrival is kept, but the slice never grows past
	// maxRequests+1: older surplus entries were purged or capped earlier.
	if len(win) > t.maxRequests+1 {
		win = win[len(win)-(t.maxRequests+1):]
	}
	s.windows[identity] = win

	count := len(win)
	return Decision{
		Allowed: count <= t.maxRequests,
		Count:   count,
		Limit:   t.maxRequests,
	}
}

// Sweep drops identities whose newest arrival predates the window, bounding
// memory growth for one-off clients. Safe to run concurrently with Record.
func (t *Tracker) Sweep(now time.Time) int {
	cutoff := now.Add(-t.window)
	removed := 0
	for _, s := range t.shards {
		s.mu.Lock()
		for identity, win := range s.windows {
			if len(win) == 0 || !win[len(win)-1].After(cutoff) {
				delete(s.windows, identity)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Tracked reports how many identities currently hold a window.
func (t *Tracker) Tracked() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}
