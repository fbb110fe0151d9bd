package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

// stubProvider serves canned snapshots and closes; missing tickers fail with
// ErrDataUnavailable like the real providers.
type stubProvider struct {
	snapshots map[string]marketdata.Snapshot
	closes    map[string][]float64
}

func (p *stubProvider) GetSnapshot(_ context.Context, ticker string) (marketdata.Snapshot, error) {
	snap, ok := p.snapshots[ticker]
	if !ok {
		return marketdata.Snapshot{}, marketdata.ErrDataUnavailable
	}
	return snap, nil
}

func (p *stubProvider) GetRecentCloses(_ context.Context, ticker string, n int) ([]float64, error) {
	closes, ok := p.closes[ticker]
	if !ok {
		return nil, marketdata.ErrDataUnavailable
	}
	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	return closes, nil
}

func appleSnapshot() marketdata.Snapshot {
	return marketdata.Snapshot{
		Ticker:        "AAPL",
		CompanyName:   "Apple Inc.",
		Sector:        "Technology",
		CurrentPrice:  210.5,
		ChangePercent: 4.2,
		Confidence:    58.4,
		Volatility:    1.3,
		MarketCap:     3.1e12,
	}
}

func newEngine(p *stubProvider) (*Lifecycle, *portfolio.Store) {
	store := portfolio.NewStore()
	lc := New(store, p, game.NewStormDetector(p), metrics.New())
	return lc, store
}

func TestScanFirstTimeHatchesCreature(t *testing.T) {
	lc, _ := newEngine(&stubProvider{
		snapshots: map[string]marketdata.Snapshot{"AAPL": appleSnapshot()},
	})

	result, err := lc.Scan(context.Background(), "alice", "AAPL")
	require.NoError(t, err)

	assert.True(t, result.IsNew)
	c := result.Creature
	assert.Equal(t, "alice_AAPL", c.ID)
	assert.Equal(t, "alice", c.OwnerID)
	assert.Equal(t, "Apple", c.Name)
	assert.Equal(t, "Technology", c.Sector)
	assert.Equal(t, game.Giant, c.Personality, "mega cap overrides the Technology archetype")
	assert.Equal(t, 1, c.ScanCount)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 58.4, c.Confidence)
	assert.Equal(t, 210.5, c.CurrentPrice)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.LastScanned)
}

func TestScanRepeatIncrementsAndRefreshes(t *testing.T) {
	provider := &stubProvider{
		snapshots: map[string]marketdata.Snapshot{"AAPL": appleSnapshot()},
	}
	lc, _ := newEngine(provider)
	ctx := context.Background()

	first, err := lc.Scan(ctx, "alice", "AAPL")
	require.NoError(t, err)
	require.True(t, first.IsNew)

	refreshed := appleSnapshot()
	refreshed.Confidence = 80
	refreshed.CurrentPrice = 215.0
	provider.snapshots["AAPL"] = refreshed

	second, err := lc.Scan(ctx, "alice", "AAPL")
	require.NoError(t, err)

	assert.False(t, second.IsNew)
	c := second.Creature
	assert.Equal(t, 2, c.ScanCount)
	assert.Equal(t, 80.0, c.Confidence)
	assert.Equal(t, 215.0, c.CurrentPrice)
	assert.Equal(t, game.Level(2, 80), c.Level)
	// Personality is fixed at creation, deliberately not recomputed.
	assert.Equal(t, first.Creature.Personality, c.Personality)
	assert.Equal(t, first.Creature.CreatedAt, c.CreatedAt)
}

func TestScanUnknownTickerFails(t *testing.T) {
	lc, _ := newEngine(&stubProvider{})
	_, err := lc.Scan(context.Background(), "alice", "GME")
	assert.ErrorIs(t, err, marketdata.ErrDataUnavailable)
}

func TestScanReportsStorm(t *testing.T) {
	lc, _ := newEngine(&stubProvider{
		snapshots: map[string]marketdata.Snapshot{"AAPL": appleSnapshot()},
		closes:    map[string][]float64{"XLK": {100, 97.4}},
	})

	result, err := lc.Scan(context.Background(), "alice", "AAPL")
	require.NoError(t, err)
	assert.True(t, result.StormActive)
	assert.Equal(t, 2.6, result.StormSeverity)
}

func TestConcurrentScansLoseNoUpdates(t *testing.T) {
	lc, _ := newEngine(&stubProvider{
		snapshots: map[string]marketdata.Snapshot{"AAPL": appleSnapshot()},
	})
	ctx := context.Background()

	const scans = 50
	newCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(scans)
	for i := 0; i < scans; i++ {
		go func() {
			defer wg.Done()
			result, err := lc.Scan(ctx, "alice", "AAPL")
			require.NoError(t, err)
			if result.IsNew {
				mu.Lock()
				newCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	c, err := lc.GetCreature("alice_AAPL")
	require.NoError(t, err)
	assert.Equal(t, scans, c.ScanCount)
	assert.Equal(t, 1, newCount, "exactly one scan may observe is_new")
}

func TestHealRaisesConfidenceCapped(t *testing.T) {
	lc, store := newEngine(&stubProvider{})
	store.Upsert("alice", "alice_AAPL", func() game.Creature {
		return game.Creature{ID: "alice_AAPL", OwnerID: "alice", Ticker: "AAPL", Confidence: 95}
	}, nil)

	healed, err := lc.Heal("alice_AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, healed.Confidence)
	require.NotNil(t, healed.LastHealed)
	assert.WithinDuration(t, time.Now(), *healed.LastHealed, time.Minute)

	again, err := lc.Heal("alice_AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Confidence, "repeated heals never exceed 100")
}

func TestHealMissingCreature(t *testing.T) {
	lc, _ := newEngine(&stubProvider{})
	_, err := lc.Heal("ghost_AAPL")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func seedForSale(store *portfolio.Store) {
	store.Upsert("alice", "alice_XOM", func() game.Creature {
		return game.Creature{
			ID:        "alice_XOM",
			OwnerID:   "alice",
			Ticker:    "XOM",
			Name:      "Exxon",
			Sector:    "Energy",
			Level:     5,
			ScanCount: 10,
		}
	}, nil)
}

func TestSellDuringStorm(t *testing.T) {
	provider := &stubProvider{closes: map[string][]float64{"XLE": {100, 97.4}}}
	lc, store := newEngine(provider)
	seedForSale(store)

	receipt, err := lc.Sell(context.Background(), "alice_XOM")
	require.NoError(t, err)

	assert.Equal(t, 50, receipt.Penalty)
	assert.Equal(t, 950, receipt.Value)
	assert.NotEmpty(t, receipt.Warning)

	_, err = lc.GetCreature("alice_XOM")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.Empty(t, lc.Portfolio("alice").Creatures)
}

func TestSellInCalmMarket(t *testing.T) {
	provider := &stubProvider{closes: map[string][]float64{"XLE": {100, 101.5}}}
	lc, store := newEngine(provider)
	seedForSale(store)

	receipt, err := lc.Sell(context.Background(), "alice_XOM")
	require.NoError(t, err)

	assert.Zero(t, receipt.Penalty)
	assert.Equal(t, 1000, receipt.Value)
	assert.Empty(t, receipt.Warning)
}

func TestSellMissingCreature(t *testing.T) {
	lc, _ := newEngine(&stubProvider{})
	_, err := lc.Sell(context.Background(), "ghost_AAPL")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestSellValueNeverNegative(t *testing.T) {
	provider := &stubProvider{closes: map[string][]float64{"XLE": {100, 95}}}
	lc, store := newEngine(provider)
	store.Upsert("alice", "alice_XOM", func() game.Creature {
		return game.Creature{
			ID: "alice_XOM", OwnerID: "alice", Ticker: "XOM",
			Sector: "Energy", Level: 25, ScanCount: 1,
		}
	}, nil)

	receipt, err := lc.Sell(context.Background(), "alice_XOM")
	require.NoError(t, err)
	assert.Equal(t, 250, receipt.Penalty)
	assert.Zero(t, receipt.Value)
}

func TestPortfolioSummary(t *testing.T) {
	provider := &stubProvider{snapshots: map[string]marketdata.Snapshot{
		"AAPL": appleSnapshot(),
		"KO": {
			Ticker: "KO", CompanyName: "Coca-Cola Company", Sector: "Consumer Defensive",
			CurrentPrice: 62.1, Confidence: 51, MarketCap: 2.7e11,
		},
	}}
	lc, _ := newEngine(provider)
	ctx := context.Background()

	_, err := lc.Scan(ctx, "alice", "AAPL")
	require.NoError(t, err)
	_, err = lc.Scan(ctx, "alice", "AAPL")
	require.NoError(t, err)
	_, err = lc.Scan(ctx, "alice", "KO")
	require.NoError(t, err)

	summary := lc.Portfolio("alice")
	assert.Equal(t, 2, summary.TotalCreatures)
	assert.Equal(t, 300, summary.TotalValue, "2 AAPL scans + 1 KO scan, 100 each")
	assert.Equal(t, 40.0, summary.DiversificationShield)
}

func TestPortfolioUnknownUserIsEmpty(t *testing.T) {
	lc, _ := newEngine(&stubProvider{})
	summary := lc.Portfolio("ghost")
	assert.Empty(t, summary.Creatures)
	assert.Zero(t, summary.TotalValue)
	assert.Zero(t, summary.DiversificationShield)
	assert.Zero(t, summary.TotalCreatures)
}

func TestSectorStatusesSkipFailures(t *testing.T) {
	provider := &stubProvider{
		snapshots: map[string]marketdata.Snapshot{
			"XLK": {Ticker: "XLK", Sector: "Technology", ChangePercent: -2.0, Confidence: 46},
			"XLE": {Ticker: "XLE", Sector: "Energy", ChangePercent: 1.1, Confidence: 52.2},
		},
		closes: map[string][]float64{
			"XLK": {100, 97.4},
			"XLE": {100, 101.1},
		},
	}
	lc, _ := newEngine(provider)

	statuses := lc.SectorStatuses(context.Background())
	require.Len(t, statuses, 2, "sectors without provider data are skipped")

	byName := map[string]SectorStatus{}
	for _, s := range statuses {
		byName[s.Sector] = s
	}
	require.Contains(t, byName, "Technology")
	require.Contains(t, byName, "Energy")
	assert.True(t, byName["Technology"].HasStorm)
	assert.Equal(t, 2.6, byName["Technology"].StormSeverity)
	assert.False(t, byName["Energy"].HasStorm)
}
