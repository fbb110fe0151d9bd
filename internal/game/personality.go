package game

// giantMarketCap is the market-cap threshold above which any company is a
// Giant regardless of sector (500B USD).
const giantMarketCap = 500_000_000_000

var sectorPersonalities = map[string]Personality{
	"Consumer Defensive":     SteadyGuardian,
	"Utilities":              SteadyGuardian,
	"Healthcare":             SteadyGuardian,
	"Technology":             Sprinter,
	"Communication Services": TrendChaser,
	"Consumer Cyclical":      Sprinter,
	"Financial Services":     Giant,
	"Energy":                 Giant,
	"Basic Materials":        Giant,
	"Industrials":            Giant,
	"Real Estate":            SteadyGuardian,
}

// ClassifyPersonality maps a sector and market capitalization to an archetype.
// Unmapped sectors default to Trend Chaser; a mega-cap always overrides to
// Giant. Total function: no failure modes.
func ClassifyPersonality(sector string, marketCap float64) Personality {
	personality, ok := sectorPersonalities[sector]
	if !ok {
		personality = TrendChaser
	}
	if marketCap > giantMarketCap {
		personality = Giant
	}
	return personality
}
