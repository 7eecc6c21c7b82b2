package crontab

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// DefaultJobTimeout bounds one scheduled run.
const DefaultJobTimeout = 30 * time.Minute

// Runner is a batch job the scheduler triggers, e.g. chat.Transformer.
type Runner interface {
	Run(ctx context.Context) (chat.RunResult, error)
}

// Crontab triggers the runner on a cron schedule. Runs never overlap.
type Crontab struct {
	ctab     *crontab.Crontab
	runner   Runner
	schedule string
	timeout  time.Duration
	running  atomic.Bool
	log      zerolog.Logger
}

func NewCrontab(runner Runner, schedule string, timeout time.Duration, log zerolog.Logger) *Crontab {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Crontab{
		ctab:     crontab.New(),
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Run executes the job once, schedules it and blocks until ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	if err := c.ctab.AddJob(c.schedule, func() { c.Trigger(ctx) }); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add transform job")
	}
	c.log.Info().Str("schedule", c.schedule).Msg("transform scheduled")

	// execute once on start
	c.Trigger(ctx)

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// Trigger runs the job unless a previous run is still active. It reports whether the job ran.
func (c *Crontab) Trigger(ctx context.Context) bool {
	if !c.running.CompareAndSwap(false, true) {
		c.log.Warn().Msg("previous transform still running, skipping this tick")
		return false
	}
	defer c.running.Store(false)

	if ctx.Err() != nil {
		return false
	}
	jobCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.runner.Run(jobCtx)
	if err != nil {
		c.log.Error().Err(err).Str("run_id", result.RunID).Msg("scheduled transform failed")
		return true
	}
	c.log.Info().
		Str("run_id", result.RunID).
		Str("outcome", result.Outcome).
		Int("partitions_written", result.PartitionsWritten).
		Msg("scheduled transform finished")
	return true
}
