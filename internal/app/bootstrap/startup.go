// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/tasks"
	"github.com/dalemusser/noticeboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// background is the job runner started in Startup and stopped in Shutdown.
var (
	backgroundMu sync.Mutex
	background   *tasks.Runner
)

// newService builds the notification service over the Mongo stores.
func newService(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *notify.Service {
	return notify.New(notify.MongoStores(deps.MongoDatabase), notify.Config{
		FeedDefaultLimit: appCfg.FeedDefaultLimit,
		HistoryPageSize:  appCfg.HistoryPageSize,
	}, logger)
}

// Startup applies the configured deadlines and starts background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	var jobs []tasks.Job
	if appCfg.OrphanSweepInterval > 0 {
		svc := newService(appCfg, deps, logger)
		jobs = append(jobs, tasks.OrphanReceiptSweepJob(svc, logger, appCfg.OrphanSweepInterval))
	} else {
		logger.Info("orphan receipt sweep disabled")
	}

	r := tasks.NewRunner(logger, jobs...)
	r.Start()

	backgroundMu.Lock()
	background = r
	backgroundMu.Unlock()
	return nil
}
