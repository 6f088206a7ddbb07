package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/internal/modules/tracking"
)

// TrackingRetentionJob removes tracking folders older than the retention
// window. Runs daily; most runs remove nothing.
type TrackingRetentionJob struct {
	log             zerolog.Logger
	service         *tracking.Service
	retentionMonths int
}

// NewTrackingRetentionJob creates a new tracking retention job
func NewTrackingRetentionJob(log zerolog.Logger, service *tracking.Service, retentionMonths int) *TrackingRetentionJob {
	return &TrackingRetentionJob{
		log:             log.With().Str("job", "tracking_retention").Logger(),
		service:         service,
		retentionMonths: retentionMonths,
	}
}

// Name returns the job name
func (j *TrackingRetentionJob) Name() string {
	return "tracking_retention"
}

// Run executes the tracking retention job
func (j *TrackingRetentionJob) Run() error {
	start := time.Now()

	removed, err := j.service.Cleanup(j.retentionMonths)
	if err != nil {
		return fmt.Errorf("tracking cleanup failed: %w", err)
	}

	if removed > 0 {
		j.log.Info().
			Int("removed", removed).
			Int("retention_months", j.retentionMonths).
			Float64("elapsed_seconds", time.Since(start).Seconds()).
			Msg("Tracking retention complete")
	}
	return nil
}
