package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/logger"
)

// DefaultLoopInterval is how often an active loop is checked
const DefaultLoopInterval = 500 * time.Millisecond

// Ticker is one loop-enforcement step
type Ticker interface {
	Tick()
}

// LoopMonitor polls the active session so an A/B loop wraps around at its end
type LoopMonitor struct {
	target   Ticker
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewLoopMonitor creates a new loop monitor
func NewLoopMonitor(target Ticker, log logger.Logger, interval time.Duration) *LoopMonitor {
	if interval <= 0 {
		interval = DefaultLoopInterval
	}

	return &LoopMonitor{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic check
func (lm *LoopMonitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(lm.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				lm.target.Tick()
			case <-lm.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	lm.logger.Debug("loop monitor running",
		logger.Duration("interval", lm.interval))
	return nil
}

// Stop stops the monitor
func (lm *LoopMonitor) Stop() {
	close(lm.stopCh)
}
