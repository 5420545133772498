package app

import (
	"context"
	"time"

	"github.com/nadi-health/core/internal/modules/storage/articlestore"
	pkgcron "github.com/nadi-health/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers the scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, a *App) {
	sched.Register(pkgcron.Job{
		Name:        "auto_backup",
		Description: "Export a daily article and topic archive",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			artifact, err := a.backups.Export(ctx, a.backups.CanUpload())
			if err != nil {
				return err
			}
			a.logger.Info("scheduled backup written",
				zap.String("file", artifact.Filename),
				zap.String("s3_key", artifact.S3Key),
			)
			return nil
		},
	})

	if m, ok := a.store.(*articlestore.Manifest); ok {
		sched.Register(pkgcron.Job{
			Name:        "rebuild_manifest",
			Description: "Regenerate the article manifest from storage",
			Interval:    6 * time.Hour,
			Fn:          m.Rebuild,
		})
	}
}
