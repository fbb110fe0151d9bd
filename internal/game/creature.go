package game

import (
	"strings"
	"time"
)

// Personality is one of the five creature archetypes.
type Personality string

const (
	SteadyGuardian Personality = "Steady Guardian"
	TrendChaser    Personality = "Trend Chaser"
	Giant          Personality = "Giant"
	Sprinter       Personality = "Sprinter"
	Diversifier    Personality = "Diversifier"
)

// Traits holds the display metadata derived from a personality. Traits are
// never stored on a creature; they are recomputed from the archetype on demand.
type Traits struct {
	Emoji      string  `json:"emoji"`
	Volatility float64 `json:"volatility"`
	Resilience float64 `json:"resilience"`
}

var personalityTraits = map[Personality]Traits{
	SteadyGuardian: {Emoji: "🐢", Volatility: 0.3, Resilience: 0.9},
	TrendChaser:    {Emoji: "🦊", Volatility: 0.8, Resilience: 0.4},
	Giant:          {Emoji: "🐘", Volatility: 0.2, Resilience: 0.95},
	Sprinter:       {Emoji: "🐦", Volatility: 0.9, Resilience: 0.3},
	Diversifier:    {Emoji: "🐙", Volatility: 0.4, Resilience: 0.7},
}

// Traits returns the archetype metadata for p. Unknown personalities fall back
// to Trend Chaser traits so a creature never renders without an emoji.
func (p Personality) Traits() Traits {
	if t, ok := personalityTraits[p]; ok {
		return t
	}
	return personalityTraits[TrendChaser]
}

// Creature is one user's tracked position in one stock ticker. Identity is
// fully determined by (OwnerID, Ticker); the id is derived, never parsed back.
type Creature struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"owner_id"`
	Ticker        string      `json:"ticker"`
	Name          string      `json:"name"`
	CompanyName   string      `json:"company_name"`
	Sector        string      `json:"sector"`
	Personality   Personality `json:"personality"`
	Confidence    float64     `json:"confidence"`
	Level         int         `json:"level"`
	ScanCount     int         `json:"scan_count"`
	CurrentPrice  float64     `json:"current_price"`
	ChangePercent float64     `json:"change_percent"`
	StormActive   bool        `json:"market_storm_active"`
	StormSeverity float64     `json:"storm_severity"`
	CreatedAt     time.Time   `json:"created_at"`
	LastScanned   time.Time   `json:"last_scanned"`
	LastHealed    *time.Time  `json:"last_healed,omitempty"`
}

// CreatureID derives the canonical creature id for a (user, ticker) pair.
func CreatureID(userID, ticker string) string {
	return userID + "_" + ticker
}

// DisplayName builds the short creature name: the first token of the company
// name, truncated to 15 characters.
func DisplayName(companyName string) string {
	fields := strings.Fields(companyName)
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	if len(name) > 15 {
		name = name[:15]
	}
	return name
}

// ClampConfidence bounds a confidence score to [0, 100].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
