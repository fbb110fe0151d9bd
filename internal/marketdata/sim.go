package marketdata

import (
	"context"
	"hash/fnv"
	"math"
)

type simQuote struct {
	Company   string
	Sector    string
	BasePrice float64
	Drift     float64 // monthly trend as a decimal, e.g. 0.04 for +4%
	Wobble    float64 // daily oscillation amplitude as a decimal
	MarketCap float64
}

// simQuotes is the offline universe: a handful of scannable brands plus the
// sector proxy ETFs the storm detector needs. Drifts are fixed so demo runs
// are reproducible.
var simQuotes = map[string]simQuote{
	"AAPL": {"Apple Inc.", "Technology", 206.80, 0.05, 0.012, 3.1e12},
	"MSFT": {"Microsoft Corporation", "Technology", 415.75, 0.04, 0.010, 3.0e12},
	"NVDA": {"NVIDIA Corporation", "Technology", 450.00, 0.09, 0.022, 2.2e12},
	"KO":   {"Coca-Cola Company", "Consumer Defensive", 62.10, 0.01, 0.006, 2.7e11},
	"PEP":  {"PepsiCo Inc.", "Consumer Defensive", 171.30, -0.01, 0.007, 2.3e11},
	"MCD":  {"McDonald's Corporation", "Consumer Cyclical", 295.20, 0.02, 0.008, 2.1e11},
	"NKE":  {"Nike Inc.", "Consumer Cyclical", 78.40, -0.03, 0.014, 1.2e11},
	"DIS":  {"Walt Disney Company", "Communication Services", 112.60, 0.02, 0.011, 2.0e11},
	"JNJ":  {"Johnson & Johnson", "Healthcare", 158.90, 0.01, 0.006, 3.8e11},
	"JPM":  {"JPMorgan Chase & Co.", "Financial Services", 248.50, 0.03, 0.009, 7.0e11},
	"XOM":  {"Exxon Mobil Corporation", "Energy", 109.70, -0.05, 0.013, 4.8e11},
	"TSLA": {"Tesla Inc.", "Consumer Cyclical", 340.00, 0.07, 0.030, 1.1e12},

	"XLK":  {"Technology Select Sector SPDR", "Technology", 230.00, 0.03, 0.008, 0},
	"XLV":  {"Health Care Select Sector SPDR", "Healthcare", 148.00, 0.01, 0.005, 0},
	"XLF":  {"Financial Select Sector SPDR", "Financial Services", 49.00, 0.02, 0.006, 0},
	"XLY":  {"Consumer Discretionary Select Sector SPDR", "Consumer Cyclical", 215.00, 0.01, 0.007, 0},
	"XLP":  {"Consumer Staples Select Sector SPDR", "Consumer Defensive", 81.00, 0.00, 0.004, 0},
	// XLE crashes steeply with near-zero wobble so its two-day move stays
	// below the storm threshold on every run.
	"XLE":  {"Energy Select Sector SPDR", "Energy", 88.00, -0.25, 0.002, 0},
	"XLU":  {"Utilities Select Sector SPDR", "Utilities", 78.00, 0.00, 0.005, 0},
	"XLRE": {"Real Estate Select Sector SPDR", "Real Estate", 41.00, -0.01, 0.006, 0},
	"XLB":  {"Materials Select Sector SPDR", "Basic Materials", 89.00, 0.01, 0.006, 0},
	"XLC":  {"Communication Services Select Sector SPDR", "Communication Services", 99.00, 0.02, 0.007, 0},
	"XLI":  {"Industrial Select Sector SPDR", "Industrials", 141.00, 0.01, 0.005, 0},
}

// SimProvider serves deterministic synthetic quotes for tests and offline
// runs. Tickers outside its universe fail with ErrDataUnavailable, matching
// the live provider's behavior for unknown symbols.
type SimProvider struct{}

// NewSimProvider creates a simulated market data provider.
func NewSimProvider() *SimProvider {
	return &SimProvider{}
}

// GetSnapshot implements Provider.
func (s *SimProvider) GetSnapshot(_ context.Context, ticker string) (Snapshot, error) {
	q, ok := simQuotes[ticker]
	if !ok {
		return Snapshot{}, ErrDataUnavailable
	}
	closes := s.closes(ticker, 22)
	price, changePct, vol, confidence := trendStats(closes)
	return Snapshot{
		Ticker:        ticker,
		CompanyName:   q.Company,
		Sector:        q.Sector,
		CurrentPrice:  price,
		ChangePercent: changePct,
		Confidence:    confidence,
		Volatility:    vol,
		MarketCap:     q.MarketCap,
	}, nil
}

// GetRecentCloses implements Provider.
func (s *SimProvider) GetRecentCloses(_ context.Context, ticker string, n int) ([]float64, error) {
	if _, ok := simQuotes[ticker]; !ok {
		return nil, ErrDataUnavailable
	}
	closes := s.closes(ticker, 22)
	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	return closes, nil
}

// closes synthesizes a daily close series: base price, linear drift across
// the window, and a per-ticker phase-shifted wobble.
func (s *SimProvider) closes(ticker string, days int) []float64 {
	q := simQuotes[ticker]
	h := fnv.New32a()
	h.Write([]byte(ticker))
	phase := float64(h.Sum32()%628) / 100 // 0..2pi

	closes := make([]float64, days)
	for i := 0; i < days; i++ {
		progress := float64(i) / float64(days-1)
		trend := 1 + q.Drift*progress
		wobble := 1 + q.Wobble*math.Sin(phase+float64(i)*0.9)
		closes[i] = q.BasePrice * trend * wobble
	}
	return closes
}
