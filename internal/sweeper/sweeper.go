// Package sweeper periodically evicts stale rate windows and, when a TTL
// is configured, expired blocks, so neither table grows without bound.
package sweeper

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/argus-sec/argus/internal/blocklist"
	"github.com/argus-sec/argus/internal/logger"
	"github.com/argus-sec/argus/internal/ratelimit"
)

// Sweeper owns the cron schedule for eviction runs.
type Sweeper struct {
	tracker  *ratelimit.Tracker
	blocks   *blocklist.BlockList
	blockTTL time.Duration
	cron     *cron.Cron
}

// New builds a sweeper. A zero blockTTL leaves blocks permanent.
func New(tracker *ratelimit.Tracker, blocks *blocklist.BlockList, blockTTL time.Duration) *Sweeper {
	return &Sweeper{
		tracker:  tracker,
		blocks:   blocks,
		blockTTL: blockTTL,
		cron:     cron.New(),
	}
}

// Start schedules the sweep every minute and begins running it.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. Running sweeps finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one eviction pass.
func (s *Sweeper) Sweep() {
	now := time.Now()
	windows := s.tracker.Sweep(now)
	blocks := s.blocks.Sweep(now, s.blockTTL)
	if windows > 0 || blocks > 0 {
		logger.WithFields(map[string]interface{}{
			"rate_windows":   windows,
			"expired_blocks": blocks,
		}).Debug("sweep evicted stale entries")
	}
}
