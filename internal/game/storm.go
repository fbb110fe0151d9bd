package game

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/nkaruna09/Wealthlings/internal/marketdata"
)

// stormThreshold is the daily proxy-index move below which a sector is
// storming, in percent.
const stormThreshold = -1.0

// sectorProxies maps each tracked sector to its proxy ETF ticker.
var sectorProxies = map[string]string{
	"Technology":             "XLK",
	"Healthcare":             "XLV",
	"Financial Services":     "XLF",
	"Consumer Cyclical":      "XLY",
	"Consumer Defensive":     "XLP",
	"Energy":                 "XLE",
	"Utilities":              "XLU",
	"Real Estate":            "XLRE",
	"Basic Materials":        "XLB",
	"Communication Services": "XLC",
	"Industrials":            "XLI",
}

// TrackedSectors returns the sectors with a proxy index, sorted for stable
// iteration.
func TrackedSectors() []string {
	sectors := make([]string, 0, len(sectorProxies))
	for sector := range sectorProxies {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	return sectors
}

// SectorProxy returns the proxy ETF ticker for a sector.
func SectorProxy(sector string) (string, bool) {
	ticker, ok := sectorProxies[sector]
	return ticker, ok
}

// StormDetector flags sectors whose proxy index dropped more than 1% over the
// last two daily closes. It is fail-open by contract: any provider failure,
// unmapped sector, or short price series reads as "no storm", so a missing
// data feed can never penalize a sale.
type StormDetector struct {
	provider marketdata.Provider
}

// NewStormDetector creates a detector backed by the given provider.
func NewStormDetector(provider marketdata.Provider) *StormDetector {
	return &StormDetector{provider: provider}
}

// Detect reports whether a sector is in a market storm and, if so, the storm
// severity (absolute daily percent move, rounded to two decimals).
func (d *StormDetector) Detect(ctx context.Context, sector string) (bool, float64) {
	proxy, ok := sectorProxies[sector]
	if !ok {
		return false, 0
	}

	closes, err := d.provider.GetRecentCloses(ctx, proxy, 2)
	if err != nil {
		log.Debug().Err(err).Str("sector", sector).Str("proxy", proxy).
			Msg("storm check degraded to no-storm")
		return false, 0
	}
	if len(closes) < 2 {
		return false, 0
	}

	yesterday := closes[len(closes)-2]
	today := closes[len(closes)-1]
	if yesterday == 0 {
		return false, 0
	}
	change := (today - yesterday) / yesterday * 100
	if change >= stormThreshold {
		return false, 0
	}
	return true, math.Round(math.Abs(change)*100) / 100
}
