package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/storage"
)

// HorizonJob keeps every calendar's built table extended past the present.
// Each run ensures coverage through now plus the configured horizon and
// persists any rebuilt tables to the cache. One calendar failing does not
// stop the others.
type HorizonJob struct {
	registry     *calendar.Registry
	repo         *storage.Repository
	horizonYears int
	log          zerolog.Logger
}

// NewHorizonJob creates the horizon extension job. repo may be nil when
// persistence is disabled.
func NewHorizonJob(registry *calendar.Registry, repo *storage.Repository, horizonYears int, log zerolog.Logger) *HorizonJob {
	return &HorizonJob{
		registry:     registry,
		repo:         repo,
		horizonYears: horizonYears,
		log:          log.With().Str("job", "horizon").Logger(),
	}
}

// Name implements Job.
func (j *HorizonJob) Name() string {
	return "horizon-extension"
}

// Run implements Job.
func (j *HorizonJob) Run() error {
	target := rules.DateOf(time.Now().UTC().AddDate(j.horizonYears, 0, 0))

	var lastErr error
	for _, c := range j.registry.All() {
		start, _, built := c.Bounds()
		if !built {
			start = rules.DateOf(time.Now().UTC())
		}

		prev := c.Built()
		if err := c.EnsureRange(start, target); err != nil {
			j.log.Error().Err(err).Str("exchange", c.Code()).Msg("Horizon extension failed")
			lastErr = err
			continue
		}

		cur := c.Built()
		if j.repo == nil || (prev != nil && cur.BuildID == prev.BuildID) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := j.repo.Save(ctx, c.Definition(), cur); err != nil {
			j.log.Error().Err(err).Str("exchange", c.Code()).Msg("Failed to cache extended schedule")
			lastErr = err
		}
		cancel()
	}
	return lastErr
}
