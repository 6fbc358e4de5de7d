package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
	"github.com/cleancity-app/waste-report-api/pkg/api/uploads"
	"github.com/cleancity-app/waste-report-api/pkg/tools"
)

// ScheduleDailyCleanup sets up a cron job that removes attachment directories
// whose report row no longer exists. Attachment deletion is filesystem-only
// and not transactionally tied to the database cascade, so a crash between
// the two can leave orphaned directories behind.
func ScheduleDailyCleanup(ctx context.Context, intake *uploads.Intake, reports repositories.ReportRepository, log *zap.Logger) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "orphan_sweep", log, func(ctx context.Context) error {
			return SweepOrphans(ctx, intake, reports, log)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}

// SweepOrphans deletes attachment directories with no matching report. The
// existence check runs immediately before each removal so a report created
// mid-sweep keeps its directory.
func SweepOrphans(ctx context.Context, intake *uploads.Intake, reports repositories.ReportRepository, log *zap.Logger) error {
	ids, err := intake.ReportDirs()
	if err != nil {
		return err
	}

	swept := 0
	for _, id := range ids {
		exists, err := reports.Exists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		intake.DeleteReportAttachments(id)
		swept++
	}
	if swept > 0 && log != nil {
		log.Info("orphan sweep removed attachment directories", zap.Int("count", swept))
	}
	return nil
}
