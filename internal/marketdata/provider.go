package marketdata

import (
	"context"
	"errors"
)

// ErrDataUnavailable signals that the data source has no usable price series
// for a ticker or index. Callers treat it as recoverable, never fatal.
var ErrDataUnavailable = errors.New("market data unavailable")

// Snapshot is a point-in-time market view of one ticker. Confidence is a 0-100
// sentiment proxy derived from the recent price trend; Volatility is the
// standard deviation of daily percent changes over the window.
type Snapshot struct {
	Ticker        string  `json:"ticker"`
	CompanyName   string  `json:"company_name"`
	Sector        string  `json:"sector"`
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	Confidence    float64 `json:"confidence"`
	Volatility    float64 `json:"volatility"`
	MarketCap     float64 `json:"market_cap"`
}

// Provider supplies market observations for tickers and sector proxy indexes.
// Implementations must bound their own I/O with timeouts; callers rely on
// calls returning rather than stalling.
type Provider interface {
	// GetSnapshot returns the current market snapshot for a ticker. Returns
	// ErrDataUnavailable when no historical price series exists.
	GetSnapshot(ctx context.Context, ticker string) (Snapshot, error)

	// GetRecentCloses returns up to n daily closes for a ticker, oldest first.
	// Returns ErrDataUnavailable when no data exists.
	GetRecentCloses(ctx context.Context, ticker string, n int) ([]float64, error)
}
