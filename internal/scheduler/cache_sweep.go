package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/internal/modules/signal"
)

// CacheSweepJob evicts expired signal cache entries so a quiet service does
// not accumulate stale results between requests.
type CacheSweepJob struct {
	log     zerolog.Logger
	service *signal.Service
}

// NewCacheSweepJob creates a new cache sweep job
func NewCacheSweepJob(log zerolog.Logger, service *signal.Service) *CacheSweepJob {
	return &CacheSweepJob{
		log:     log.With().Str("job", "cache_sweep").Logger(),
		service: service,
	}
}

// Name returns the job name
func (j *CacheSweepJob) Name() string {
	return "cache_sweep"
}

// Run executes the cache sweep job
func (j *CacheSweepJob) Run() error {
	return j.service.SweepCache()
}
