package moderation

import (
	"log/slog"
	"time"

	"github.com/filmpulse/arbiter/pkg/lifecycle"
)

// Sweeper runs periodic backlog sweeps so records whose inline AI attempt
// failed still get resolved without blocking the submission path.
type Sweeper struct {
	sys      System
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper over the given moderation system.
func NewSweeper(sys System, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		sys:      sys,
		interval: interval,
		logger:   logger.With("system", "sweeper"),
	}
}

// Start launches the sweep loop, stopping when the lifecycle context is
// cancelled.
func (s *Sweeper) Start(lc *lifecycle.Coordinator) {
	s.logger.Info("starting backlog sweeper", "interval", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				s.logger.Info("backlog sweeper stopped")
				return
			case <-ticker.C:
				report, err := s.sys.Sweep(lc.Context())
				if err != nil {
					s.logger.Error("backlog sweep failed", "error", err)
					continue
				}
				if report.Scanned > 0 {
					s.logger.Info("scheduled sweep finished",
						"scanned", report.Scanned,
						"resolved", report.Resolved,
						"escalated", report.Escalated,
						"deferred", report.Deferred,
					)
				}
			}
		}
	}()
}
