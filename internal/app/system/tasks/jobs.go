// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/noticeboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// OrphanSweeper removes receipts left behind by deleted broadcasts.
type OrphanSweeper interface {
	SweepOrphanReceipts(ctx context.Context) (int64, error)
}

// OrphanReceiptSweepJob creates a job that deletes receipts whose broadcast
// no longer exists. DeleteBroadcast removes receipts itself; this catches
// the ones left when that second step failed.
func OrphanReceiptSweepJob(sweeper OrphanSweeper, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "orphan-receipt-sweep",
		Interval: interval,
		Timeout:  timeouts.Long(),
		Run: func(ctx context.Context) error {
			count, err := sweeper.SweepOrphanReceipts(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("removed orphan receipts", zap.Int64("count", count))
			}
			return nil
		},
	}
}
