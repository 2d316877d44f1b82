// Package worker runs the periodic background jobs: SLA breach sweeps and
// retries for tickets whose initial creation failed.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/handoff"
)

// SLAWorker periodically marks breached tickets overdue and drains the
// ticket reconciliation queue.
type SLAWorker struct {
	tracker  *handoff.SLATracker
	manager  *handoff.TicketManager
	interval time.Duration
	logger   *zap.Logger
}

// NewSLAWorker constructs the worker.
func NewSLAWorker(tracker *handoff.SLATracker, manager *handoff.TicketManager, interval time.Duration, logger *zap.Logger) *SLAWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SLAWorker{tracker: tracker, manager: manager, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (w *SLAWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sla worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SLAWorker) sweep(ctx context.Context) {
	breached, err := w.tracker.Sweep(ctx, time.Now())
	if err != nil {
		w.logger.Error("sla sweep failed", zap.Error(err))
	} else if breached > 0 {
		w.logger.Warn("sla breaches detected", zap.Int("count", breached))
	}

	if retried := w.manager.RetryReconciliation(ctx); retried > 0 {
		w.logger.Info("reconciled tickets", zap.Int("count", retried))
	}
}
