package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

type hookProvider struct {
	snapshots map[string]marketdata.Snapshot
	closes    map[string][]float64
	// onSnapshot runs before each snapshot lookup, letting tests mutate the
	// store mid-sweep.
	onSnapshot func(ticker string)
}

func (p *hookProvider) GetSnapshot(_ context.Context, ticker string) (marketdata.Snapshot, error) {
	if p.onSnapshot != nil {
		p.onSnapshot(ticker)
	}
	snap, ok := p.snapshots[ticker]
	if !ok {
		return marketdata.Snapshot{}, marketdata.ErrDataUnavailable
	}
	return snap, nil
}

func (p *hookProvider) GetRecentCloses(_ context.Context, ticker string, _ int) ([]float64, error) {
	closes, ok := p.closes[ticker]
	if !ok {
		return nil, marketdata.ErrDataUnavailable
	}
	return closes, nil
}

func seed(store *portfolio.Store, id, ticker, sector string) {
	store.Upsert("alice", id, func() game.Creature {
		return game.Creature{
			ID: id, OwnerID: "alice", Ticker: ticker, Sector: sector,
			Confidence: 50, Level: 1, ScanCount: 1, CurrentPrice: 100,
		}
	}, nil)
}

func TestRunOnceRefreshesMarketFields(t *testing.T) {
	store := portfolio.NewStore()
	seed(store, "alice_XOM", "XOM", "Energy")

	provider := &hookProvider{
		snapshots: map[string]marketdata.Snapshot{
			"XOM": {Ticker: "XOM", Sector: "Energy", CurrentPrice: 104.2, ChangePercent: -1.8, Confidence: 46.4},
		},
		closes: map[string][]float64{"XLE": {100, 97.4}},
	}
	sweeper := New(store, provider, game.NewStormDetector(provider), metrics.New(), 0, nil)

	sweeper.RunOnce(context.Background())

	c, ok := store.Get("alice_XOM")
	require.True(t, ok)
	assert.Equal(t, 104.2, c.CurrentPrice)
	assert.Equal(t, -1.8, c.ChangePercent)
	assert.Equal(t, 46.4, c.Confidence)
	assert.True(t, c.StormActive)
	assert.Equal(t, 2.6, c.StormSeverity)
	assert.Equal(t, 1, c.ScanCount, "sweeps never count as scans")
}

func TestRunOnceClearsPassedStorm(t *testing.T) {
	store := portfolio.NewStore()
	store.Upsert("alice", "alice_XOM", func() game.Creature {
		return game.Creature{
			ID: "alice_XOM", OwnerID: "alice", Ticker: "XOM", Sector: "Energy",
			Confidence: 50, StormActive: true, StormSeverity: 2.6,
		}
	}, nil)

	provider := &hookProvider{
		snapshots: map[string]marketdata.Snapshot{
			"XOM": {Ticker: "XOM", Sector: "Energy", CurrentPrice: 110, ChangePercent: 2.0, Confidence: 54},
		},
		closes: map[string][]float64{"XLE": {100, 102}},
	}
	sweeper := New(store, provider, game.NewStormDetector(provider), metrics.New(), 0, nil)

	sweeper.RunOnce(context.Background())

	c, ok := store.Get("alice_XOM")
	require.True(t, ok)
	assert.False(t, c.StormActive)
	assert.Zero(t, c.StormSeverity)
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	store := portfolio.NewStore()
	seed(store, "alice_GOOD", "GOOD", "Energy")
	seed(store, "alice_BAD", "BAD", "Energy")

	provider := &hookProvider{
		snapshots: map[string]marketdata.Snapshot{
			"GOOD": {Ticker: "GOOD", Sector: "Energy", CurrentPrice: 55.5, Confidence: 52},
		},
		closes: map[string][]float64{"XLE": {100, 100.5}},
	}
	sweeper := New(store, provider, game.NewStormDetector(provider), metrics.New(), 0, nil)

	sweeper.RunOnce(context.Background())

	good, ok := store.Get("alice_GOOD")
	require.True(t, ok)
	assert.Equal(t, 55.5, good.CurrentPrice, "healthy tickers still refresh")

	bad, ok := store.Get("alice_BAD")
	require.True(t, ok, "failed tickers survive untouched")
	assert.Equal(t, 100.0, bad.CurrentPrice)
}

func TestRunOnceNeverResurrectsSoldCreature(t *testing.T) {
	store := portfolio.NewStore()
	seed(store, "alice_XOM", "XOM", "Energy")

	provider := &hookProvider{
		snapshots: map[string]marketdata.Snapshot{
			"XOM": {Ticker: "XOM", Sector: "Energy", CurrentPrice: 104.2, Confidence: 46},
		},
		closes: map[string][]float64{"XLE": {100, 100.5}},
	}
	// Sell between the run's snapshot and its write.
	provider.onSnapshot = func(ticker string) {
		if ticker == "XOM" {
			_, _ = store.Remove("alice_XOM")
		}
	}
	sweeper := New(store, provider, game.NewStormDetector(provider), metrics.New(), 0, nil)

	sweeper.RunOnce(context.Background())

	_, ok := store.Get("alice_XOM")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestRunOncePublishesOneEventPerSector(t *testing.T) {
	store := portfolio.NewStore()
	seed(store, "alice_XOM", "XOM", "Energy")
	seed(store, "alice_CVX", "CVX", "Energy")
	seed(store, "alice_AAPL", "AAPL", "Technology")

	provider := &hookProvider{
		snapshots: map[string]marketdata.Snapshot{
			"XOM":  {Ticker: "XOM", Sector: "Energy", CurrentPrice: 104, Confidence: 46},
			"CVX":  {Ticker: "CVX", Sector: "Energy", CurrentPrice: 151, Confidence: 47},
			"AAPL": {Ticker: "AAPL", Sector: "Technology", CurrentPrice: 210, Confidence: 60},
		},
		closes: map[string][]float64{
			"XLE": {100, 97.4},  // storming
			"XLK": {100, 101.2}, // calm
		},
	}

	var events []StormEvent
	notify := func(e StormEvent) { events = append(events, e) }
	sweeper := New(store, provider, game.NewStormDetector(provider), metrics.New(), 0, notify)

	sweeper.RunOnce(context.Background())

	require.Len(t, events, 1, "both Energy creatures share one storm event")
	assert.Equal(t, "Energy", events[0].Sector)
	assert.Equal(t, 2.6, events[0].Severity)
	assert.False(t, events[0].At.IsZero())
}
