package services

import (
	"context"
	"time"
)

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StartEnergyRegen restores energy once an hour.
func (s *ClickerService) StartEnergyRegen(ctx context.Context) {
	every(ctx, time.Hour, func() {
		n, err := s.RegenerateEnergy(ctx)
		if err != nil {
			s.log.Error("energy regeneration failed", "error", err)
			return
		}
		if n > 0 {
			s.log.Info("energy regenerated", "users", n)
		}
	})
}

// StartSweeper drops expired admin sessions every interval.
func (a *AdminAuth) StartSweeper(ctx context.Context, interval time.Duration) {
	every(ctx, interval, func() {
		if n := a.Sweep(); n > 0 {
			a.log.Info("admin sessions swept", "removed", n)
		}
	})
}
