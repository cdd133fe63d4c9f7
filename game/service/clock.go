package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunClock drives every session by calling TickAll at the given interval
// until ctx is cancelled. The delta passed to TickAll is the measured time
// since the previous tick, so a slow iteration does not lose time. A
// non-positive interval disables the clock and RunClock returns at once.
func RunClock(ctx context.Context, svc GameService, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("game clock disabled, sessions advance through explicit ticks")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("game clock started")
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game clock stopped")
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if delta <= 0 {
				continue
			}
			svc.TickAll(ctx, delta)
		}
	}
}
