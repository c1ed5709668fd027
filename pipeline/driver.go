package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stage is one runnable pipeline step.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Driver chains stages in order, pausing between them. The first stage
// error stops the run; later stages never see a partial predecessor.
type Driver struct {
	Stages []Stage
	Pause  time.Duration
	Log    zerolog.Logger
}

// Run executes all stages sequentially under a fresh run ID.
func (d *Driver) Run(ctx context.Context) error {
	log := d.Log.With().Str("run_id", uuid.NewString()).Logger()
	log.Info().Int("stages", len(d.Stages)).Msg("pipeline run starting")

	for i, stage := range d.Stages {
		if i > 0 && d.Pause > 0 {
			select {
			case <-time.After(d.Pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		start := time.Now()
		log.Info().Str("stage", stage.Name).Msg("stage starting")
		if err := stage.Run(ctx); err != nil {
			log.Error().Err(err).Str("stage", stage.Name).Msg("stage failed")
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		log.Info().Str("stage", stage.Name).Dur("elapsed", time.Since(start)).Msg("stage complete")
	}

	log.Info().Msg("pipeline run complete")
	return nil
}
