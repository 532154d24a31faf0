package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_AllowsUpToLimit(t *testing.T) {
	tr := NewTracker(5, time.Minute)
	base := time.Now()

	for i := 0; i < 5; i++ {
		d := tr.Record("1.2.3.4", base.Add(time.Duration(i)*time.Second))
		assert.True(t, d.Allowed, "request %d should be allowed", i+1)
	}

	d := tr.Record("1.2.3.4", base.Add(6*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 6, d.Count)
}

func TestTracker_WindowResets(t *testing.T) {
	tr := NewTracker(3, time.Minute)
	base := time.Now()

	for i := 0; i < 3; i++ {
		tr.Record("client", base.Add(time.Duration(i)*time.Second))
	}
	d := tr.Record("client", base.Add(3*time.Second))
	assert.False(t, d.Allowed)

	// After the window elapses the old arrivals are purged.
	d = tr.Record("client", base.Add(time.Minute+4*time.Second))
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestTracker_RejectedArrivalsStillCount(t *testing.T) {
	tr := NewTracker(2, time.Minute)
	base := time.Now()

	tr.Record("client", base)
	tr.Record("client", base.Add(time.Second))

	// Hammering within the window keeps getting rejected.
	for i := 0; i < 10; i++ {
		d := tr.Record("client", base.Add(time.Duration(2+i)*time.Second))
		assert.False(t, d.Allowed)
	}
}

func TestTracker_IndependentIdentities(t *testing.T) {
	tr := NewTracker(1, time.Minute)
	base := time.Now()

	assert.True(t, tr.Record("a", base).Allowed)
	assert.False(t, tr.Record("a", base.Add(time.Second)).Allowed)
	assert.True(t, tr.Record("b", base.Add(time.Second)).Allowed)
}

func TestTracker_Pressure(t *testing.T) {
	tr := NewTracker(4, time.Minute)
	base := time.Now()

	d := tr.Record("client", base)
	assert.InDelta(t, 0.25, d.Pressure(), 1e-9)

	tr.Record("client", base.Add(time.Second))
	tr.Record("client", base.Add(2*time.Second))
	d = tr.Record("client", base.Add(3*time.Second))
	assert.InDelta(t, 1.0, d.Pressure(), 1e-9)

	// Over the limit the signal stays clamped at 1.
	d = tr.Record("client", base.Add(4*time.Second))
	assert.InDelta(t, 1.0, d.Pressure(), 1e-9)
}

func TestTracker_Sweep(t *testing.T) {
	tr := NewTracker(10, time.Minute)
	base := time.Now()

	tr.Record("stale", base)
	tr.Record("fresh", base.Add(2*time.Minute))
	assert.Equal(t, 2, tr.Tracked())

	removed := tr.Sweep(base.Add(2*time.Minute + time.Second))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, tr.Tracked())
}

func TestTracker_ConcurrentIdentities(t *testing.T) {
	tr := NewTracker(100, time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("client-%d", n)
			for j := 0; j < 50; j++ {
				d := tr.Record(id, now.Add(time.Duration(j)*time.Millisecond))
				assert.True(t, d.Allowed)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, tr.Tracked())
}
