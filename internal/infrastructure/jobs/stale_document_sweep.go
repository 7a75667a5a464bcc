package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"factura-scanner.backend/internal/domain/entities"
	"factura-scanner.backend/internal/domain/repositories"
	"factura-scanner.backend/pkg/logger"
)

// StaleDocumentSweep closes out documents left in pending/processing by a
// crash between the record write and its status update. Without it, those
// rows would sit in a non-terminal state forever.
type StaleDocumentSweep struct {
	repo       repositories.DocumentRepository
	interval   time.Duration
	stuckAfter time.Duration
	stop       chan struct{}
}

func NewStaleDocumentSweep(repo repositories.DocumentRepository, interval, stuckAfter time.Duration) *StaleDocumentSweep {
	return &StaleDocumentSweep{
		repo:       repo,
		interval:   interval,
		stuckAfter: stuckAfter,
		stop:       make(chan struct{}),
	}
}

func (j *StaleDocumentSweep) Start(ctx context.Context) {
	logger.Info(ctx, "starting stale document sweep",
		zap.Duration("interval", j.interval),
		zap.Duration("stuck_after", j.stuckAfter),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "stale document sweep stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "stale document sweep stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *StaleDocumentSweep) Stop() {
	close(j.stop)
}

func (j *StaleDocumentSweep) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.stuckAfter)
	stuck, err := j.repo.ListStuck(ctx, cutoff, 100)
	if err != nil {
		logger.Error(ctx, "error listing stuck documents", zap.Error(err))
		return
	}
	if len(stuck) == 0 {
		return
	}

	logger.Info(ctx, "sweeping stuck documents", zap.Int("count", len(stuck)))

	for _, doc := range stuck {
		update := &entities.DocumentStatusUpdate{
			Status:       entities.DocumentStatusError,
			ErrorCode:    "STUCK",
			ErrorMessage: "processing did not reach a terminal state",
		}
		if err := j.repo.UpdateStatus(ctx, doc.ID, update); err != nil {
			logger.Error(ctx, "error closing stuck document",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		}
	}
}
