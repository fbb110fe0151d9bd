// Package lifecycle orchestrates creature creation, update, healing and sale
// on top of the portfolio store, the market data provider and the game
// calculators. It is the only writer besides the sweeper.
package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

const (
	healBoost     = 10
	valuePerScan  = 100
	penaltyPerLvl = 10
)

// Lifecycle exposes the user-facing creature operations.
type Lifecycle struct {
	store    *portfolio.Store
	provider marketdata.Provider
	storms   *game.StormDetector
	metrics  *metrics.Registry
	now      func() time.Time
}

// New creates a lifecycle engine.
func New(store *portfolio.Store, provider marketdata.Provider, storms *game.StormDetector, m *metrics.Registry) *Lifecycle {
	return &Lifecycle{
		store:    store,
		provider: provider,
		storms:   storms,
		metrics:  m,
		now:      time.Now,
	}
}

// ScanResult is the outcome of one brand scan.
type ScanResult struct {
	Creature      game.Creature
	IsNew         bool
	StormActive   bool
	StormSeverity float64
}

// Scan observes a ticker for a user: the first scan hatches a creature, every
// repeat scan increments its scan count and refreshes its market fields.
// Personality is fixed at creation and deliberately not recomputed on
// re-scans. Fails with marketdata.ErrDataUnavailable when the provider has no
// series for the ticker.
func (l *Lifecycle) Scan(ctx context.Context, userID, ticker string) (ScanResult, error) {
	snap, err := l.provider.GetSnapshot(ctx, ticker)
	if err != nil {
		l.metrics.ScansTotal.WithLabelValues("error").Inc()
		return ScanResult{}, fmt.Errorf("scan %s: %w", ticker, err)
	}

	id := game.CreatureID(userID, ticker)
	now := l.now()

	creature, isNew := l.store.Upsert(userID, id,
		func() game.Creature {
			return game.Creature{
				ID:            id,
				OwnerID:       userID,
				Ticker:        ticker,
				Name:          game.DisplayName(snap.CompanyName),
				CompanyName:   snap.CompanyName,
				Sector:        snap.Sector,
				Personality:   game.ClassifyPersonality(snap.Sector, snap.MarketCap),
				Confidence:    game.ClampConfidence(snap.Confidence),
				Level:         1,
				ScanCount:     1,
				CurrentPrice:  snap.CurrentPrice,
				ChangePercent: snap.ChangePercent,
				CreatedAt:     now,
				LastScanned:   now,
			}
		},
		func(c *game.Creature) {
			c.ScanCount++
			c.Confidence = game.ClampConfidence(snap.Confidence)
			c.CurrentPrice = snap.CurrentPrice
			c.ChangePercent = snap.ChangePercent
			c.Level = game.Level(c.ScanCount, c.Confidence)
			c.LastScanned = now
		},
	)

	if isNew {
		l.metrics.ScansTotal.WithLabelValues("new").Inc()
		l.metrics.CreaturesActive.Inc()
	} else {
		l.metrics.ScansTotal.WithLabelValues("repeat").Inc()
	}

	stormActive, severity := l.storms.Detect(ctx, creature.Sector)

	log.Info().
		Str("user", userID).
		Str("ticker", ticker).
		Bool("is_new", isNew).
		Int("scan_count", creature.ScanCount).
		Int("level", creature.Level).
		Msg("creature scanned")

	return ScanResult{
		Creature:      creature,
		IsNew:         isNew,
		StormActive:   stormActive,
		StormSeverity: severity,
	}, nil
}

// Heal raises a creature's confidence by 10, capped at 100. Only confidence
// and the heal timestamp change. Fails with portfolio.ErrNotFound.
func (l *Lifecycle) Heal(id string) (game.Creature, error) {
	now := l.now()
	creature, err := l.store.Update(id, func(c *game.Creature) {
		c.Confidence = game.ClampConfidence(c.Confidence + healBoost)
		c.LastHealed = &now
	})
	if err != nil {
		return game.Creature{}, err
	}
	l.metrics.HealsTotal.Inc()
	return creature, nil
}

// SaleReceipt is the outcome of releasing a creature.
type SaleReceipt struct {
	Creature game.Creature
	Value    int
	Penalty  int
	// Warning is non-empty only when the sale happened during a market storm.
	Warning string
}

// Sell releases a creature for game currency: scanCount x 100, minus
// level x 10 when the creature's sector is storming. The creature and its
// ownership entry are removed as one atomic step. Fails with
// portfolio.ErrNotFound.
func (l *Lifecycle) Sell(ctx context.Context, id string) (SaleReceipt, error) {
	c, ok := l.store.Get(id)
	if !ok {
		return SaleReceipt{}, portfolio.ErrNotFound
	}

	stormActive, _ := l.storms.Detect(ctx, c.Sector)

	removed, err := l.store.Remove(id)
	if err != nil {
		return SaleReceipt{}, err // lost a concurrent sell race
	}
	l.metrics.CreaturesActive.Dec()
	l.metrics.SellsTotal.WithLabelValues(strconv.FormatBool(stormActive)).Inc()

	receipt := SaleReceipt{Creature: removed}
	if stormActive {
		receipt.Penalty = removed.Level * penaltyPerLvl
		receipt.Warning = fmt.Sprintf("Selling during Market Storm! You'll lose %d XP.", receipt.Penalty)
	}
	receipt.Value = removed.ScanCount*valuePerScan - receipt.Penalty
	if receipt.Value < 0 {
		receipt.Value = 0
	}

	log.Info().
		Str("creature", id).
		Int("value", receipt.Value).
		Int("penalty", receipt.Penalty).
		Bool("storm", stormActive).
		Msg("creature sold")

	return receipt, nil
}

// GetCreature returns a creature by id or portfolio.ErrNotFound.
func (l *Lifecycle) GetCreature(id string) (game.Creature, error) {
	c, ok := l.store.Get(id)
	if !ok {
		return game.Creature{}, portfolio.ErrNotFound
	}
	return c, nil
}

// PortfolioSummary aggregates one user's holdings.
type PortfolioSummary struct {
	Creatures             []game.Creature
	TotalValue            int
	DiversificationShield float64
	TotalCreatures        int
}

// Portfolio returns a user's creatures with total value (scanCount x 100 per
// creature) and diversification shield. Unknown users get an empty summary.
func (l *Lifecycle) Portfolio(userID string) PortfolioSummary {
	creatures := l.store.ListForUser(userID)
	total := 0
	for _, c := range creatures {
		total += c.ScanCount * valuePerScan
	}
	return PortfolioSummary{
		Creatures:             creatures,
		TotalValue:            total,
		DiversificationShield: game.DiversificationShield(creatures),
		TotalCreatures:        len(creatures),
	}
}

// DetectStorm reports the current storm status for a sector.
func (l *Lifecycle) DetectStorm(ctx context.Context, sector string) (bool, float64) {
	return l.storms.Detect(ctx, sector)
}

// SectorStatus is the market overview entry for one tracked sector.
type SectorStatus struct {
	Sector        string  `json:"sector"`
	ChangePercent float64 `json:"change_percent"`
	Confidence    float64 `json:"confidence"`
	HasStorm      bool    `json:"has_storm"`
	StormSeverity float64 `json:"storm_severity"`
}

// SectorStatuses returns the market overview across all tracked sectors,
// skipping any sector whose proxy data cannot be fetched.
func (l *Lifecycle) SectorStatuses(ctx context.Context) []SectorStatus {
	statuses := make([]SectorStatus, 0, len(game.TrackedSectors()))
	for _, sector := range game.TrackedSectors() {
		proxy, _ := game.SectorProxy(sector)
		snap, err := l.provider.GetSnapshot(ctx, proxy)
		if err != nil {
			log.Debug().Err(err).Str("sector", sector).Msg("sector status skipped")
			continue
		}
		hasStorm, severity := l.storms.Detect(ctx, sector)
		statuses = append(statuses, SectorStatus{
			Sector:        sector,
			ChangePercent: snap.ChangePercent,
			Confidence:    snap.Confidence,
			HasStorm:      hasStorm,
			StormSeverity: severity,
		})
	}
	return statuses
}
