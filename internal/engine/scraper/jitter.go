package scraper

import (
	"context"
	"math/rand/v2"
	"time"
)

// Jitter produces randomized pacing delays so automated actions do not fire
// at a machine-regular cadence.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// Pacing tiers calibrated against the maps provider.
var (
	ShortPause  = Jitter{800 * time.Millisecond, 1500 * time.Millisecond}
	ScrollPause = Jitter{1200 * time.Millisecond, 2500 * time.Millisecond}
	LongPause   = Jitter{2 * time.Second, 5 * time.Second}
)

// Duration returns a random duration in [Min, Max).
func (j Jitter) Duration() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)))
}

// Sleep pauses for a jittered duration, returning early if ctx is done.
func (j Jitter) Sleep(ctx context.Context) {
	d := j.Duration()
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
