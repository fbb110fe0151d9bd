// Package sweep runs the periodic market refresh over every stored creature.
// The sweeper is fault-isolated: one bad ticker never aborts the rest of a
// run, and a creature sold mid-sweep is silently skipped at write time.
package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

// DefaultInterval is how often the sweeper refreshes the portfolio.
const DefaultInterval = 60 * time.Second

// StormEvent describes a market storm observed during a sweep run. At most
// one event per sector is published per run.
type StormEvent struct {
	Sector   string    `json:"sector"`
	Severity float64   `json:"severity"`
	At       time.Time `json:"at"`
}

// Notifier receives storm events from sweep runs. Implementations must not
// block; the sweeper calls them inline.
type Notifier func(StormEvent)

// Sweeper refreshes market-derived creature fields on a fixed interval.
type Sweeper struct {
	store    *portfolio.Store
	provider marketdata.Provider
	storms   *game.StormDetector
	metrics  *metrics.Registry
	interval time.Duration
	notify   Notifier
}

// New creates a sweeper. A nil notify is allowed; interval <= 0 falls back to
// DefaultInterval.
func New(store *portfolio.Store, provider marketdata.Provider, storms *game.StormDetector, m *metrics.Registry, interval time.Duration, notify Notifier) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    store,
		provider: provider,
		storms:   storms,
		metrics:  m,
		interval: interval,
		notify:   notify,
	}
}

// Run sweeps on the configured interval until ctx is cancelled. Cancellation
// between ticks is the only stop point; an in-flight run finishes its
// remaining creatures bounded by the provider's own timeouts.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().Dur("interval", s.interval).Msg("market sweeper starting")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("market sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

type stormStatus struct {
	active   bool
	severity float64
}

// RunOnce refreshes every creature present at the start of the run. Safe to
// call concurrently with user operations: each write is an atomic per-id
// update that no-ops when the creature was sold after the snapshot.
func (s *Sweeper) RunOnce(ctx context.Context) {
	start := time.Now()
	creatures := s.store.Snapshot()
	s.metrics.SweepRuns.Inc()

	// One storm check per sector per run; creatures share sector status.
	sectorStorms := make(map[string]stormStatus)
	updated, skipped, gone := 0, 0, 0

	for _, c := range creatures {
		snap, err := s.provider.GetSnapshot(ctx, c.Ticker)
		if err != nil {
			log.Warn().Err(err).Str("creature", c.ID).Str("ticker", c.Ticker).
				Msg("sweep skipped creature")
			s.metrics.SweepCreatures.WithLabelValues("skipped").Inc()
			skipped++
			continue
		}

		storm, known := sectorStorms[c.Sector]
		if !known {
			active, severity := s.storms.Detect(ctx, c.Sector)
			storm = stormStatus{active: active, severity: severity}
			sectorStorms[c.Sector] = storm
			if active {
				s.metrics.StormsDetected.WithLabelValues(c.Sector).Inc()
				if s.notify != nil {
					s.notify(StormEvent{Sector: c.Sector, Severity: severity, At: time.Now()})
				}
			}
		}

		_, err = s.store.Update(c.ID, func(c *game.Creature) {
			c.Confidence = game.ClampConfidence(snap.Confidence)
			c.CurrentPrice = snap.CurrentPrice
			c.ChangePercent = snap.ChangePercent
			c.StormActive = storm.active
			c.StormSeverity = storm.severity
		})
		if err != nil {
			if errors.Is(err, portfolio.ErrNotFound) {
				// Sold while this run was in flight; never resurrect.
				s.metrics.SweepCreatures.WithLabelValues("gone").Inc()
				gone++
				continue
			}
			log.Warn().Err(err).Str("creature", c.ID).Msg("sweep update failed")
			s.metrics.SweepCreatures.WithLabelValues("skipped").Inc()
			skipped++
			continue
		}
		s.metrics.SweepCreatures.WithLabelValues("updated").Inc()
		updated++
	}

	log.Info().
		Int("creatures", len(creatures)).
		Int("updated", updated).
		Int("skipped", skipped).
		Int("gone", gone).
		Dur("took", time.Since(start)).
		Msg("market sweep completed")
}
