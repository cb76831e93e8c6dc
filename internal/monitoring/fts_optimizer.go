package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// FTSOptimizer periodically merges the full-text index's b-trees so note
// search stays fast as rows churn. SQLite defers this housekeeping to the
// application, so it runs here on a cron schedule.
type FTSOptimizer struct {
	db       *sql.DB
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewFTSOptimizer creates an optimizer from a standard cron expression.
func NewFTSOptimizer(db *sql.DB, expr string) (*FTSOptimizer, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}
	return &FTSOptimizer{
		db:       db,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
		done:     make(chan bool),
	}, nil
}

// Run starts the optimizer's ticking loop.
func (o *FTSOptimizer) Run() {
	log.Info().Time("next_run", o.nextRun).Msg("Starting FTS optimizer")
	o.ticker = time.NewTicker(1 * time.Minute)
	defer o.ticker.Stop()

	for {
		select {
		case <-o.done:
			log.Info().Msg("Stopping FTS optimizer")
			return
		case <-o.ticker.C:
			now := time.Now()
			if now.After(o.nextRun) {
				o.optimize()
				o.nextRun = o.schedule.Next(now)
			}
		}
	}
}

// Stop halts the optimizer.
func (o *FTSOptimizer) Stop() {
	o.done <- true
}

func (o *FTSOptimizer) optimize() {
	started := time.Now()
	if _, err := o.db.Exec(`INSERT INTO notes_fts(notes_fts) VALUES ('optimize')`); err != nil {
		log.Error().Err(err).Msg("FTS optimize failed")
		return
	}
	log.Info().Dur("took", time.Since(started)).Msg("FTS index optimized")
}
