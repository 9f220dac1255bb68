package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/services"
)

// SheetRefreshJob re-imports the guild sheet on its cadence.
type SheetRefreshJob struct {
	refresh *services.RefreshService
	log     zerolog.Logger
}

// NewSheetRefreshJob creates the sheet refresh job.
func NewSheetRefreshJob(refresh *services.RefreshService, log zerolog.Logger) *SheetRefreshJob {
	return &SheetRefreshJob{refresh: refresh, log: log.With().Str("job", "sheet_refresh").Logger()}
}

// Name returns the job name.
func (j *SheetRefreshJob) Name() string { return "sheet_refresh" }

// Run performs one sheet import cycle.
func (j *SheetRefreshJob) Run() error {
	report, err := j.refresh.RefreshFromSheet()
	if err != nil {
		return err
	}
	if report != nil {
		j.log.Info().
			Str("run_id", report.RunID).
			Int("companies", report.Companies).
			Int("skipped", report.RowsSkipped).
			Msg("Sheet refreshed")
	}
	return nil
}

// PriceRefreshJob merges live quotes and re-exports on its cadence.
type PriceRefreshJob struct {
	refresh *services.RefreshService
}

// NewPriceRefreshJob creates the price refresh job.
func NewPriceRefreshJob(refresh *services.RefreshService) *PriceRefreshJob {
	return &PriceRefreshJob{refresh: refresh}
}

// Name returns the job name.
func (j *PriceRefreshJob) Name() string { return "price_refresh" }

// Run performs one quote refresh cycle.
func (j *PriceRefreshJob) Run() error {
	return j.refresh.RefreshPrices()
}

// PublishJob pushes exports to GitHub on its cadence; the publisher's own
// minimum-interval guard keeps back-to-back schedules cheap.
type PublishJob struct {
	refresh *services.RefreshService
}

// NewPublishJob creates the publish job.
func NewPublishJob(refresh *services.RefreshService) *PublishJob {
	return &PublishJob{refresh: refresh}
}

// Name returns the job name.
func (j *PublishJob) Name() string { return "publish" }

// Run performs one publish attempt.
func (j *PublishJob) Run() error {
	_, err := j.refresh.Publish(false)
	return err
}
