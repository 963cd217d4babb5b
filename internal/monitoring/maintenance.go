package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/sebringj/localstack/internal/storage"
)

// Maintenance runs scheduled housekeeping against the store engine.
// Currently that is value-log garbage collection; engines with nothing to
// collect make each run a no-op.
type Maintenance struct {
	store storage.Engine
	cron  *cron.Cron
}

// NewMaintenance creates a maintenance runner with the given cron
// schedule (e.g. "@every 10m").
func NewMaintenance(store storage.Engine, schedule string) (*Maintenance, error) {
	m := &Maintenance{
		store: store,
		cron:  cron.New(),
	}

	if _, err := m.cron.AddFunc(schedule, m.runGC); err != nil {
		return nil, err
	}
	return m, nil
}

// Start begins running the schedule in the background.
func (m *Maintenance) Start() {
	m.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) runGC() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reclaimed, err := m.store.GC(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Store maintenance failed")
		return
	}
	if reclaimed > 0 {
		log.Info().Uint64("bytes_reclaimed", reclaimed).Msg("Store maintenance reclaimed space")
	}
}
