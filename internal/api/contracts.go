package api

import (
	"time"

	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/lifecycle"
)

// CreaturePayload is a creature plus its derived display metadata. The emoji
// is recomputed from the personality on every response, never stored.
type CreaturePayload struct {
	game.Creature
	PersonalityEmoji string `json:"personality_emoji"`
}

func creaturePayload(c game.Creature) CreaturePayload {
	return CreaturePayload{Creature: c, PersonalityEmoji: c.Personality.Traits().Emoji}
}

// StormPayload reports a sector's storm status.
type StormPayload struct {
	Active         bool    `json:"active"`
	Severity       float64 `json:"severity"`
	AffectedSector string  `json:"affected_sector,omitempty"`
}

// ScanRequest asks to scan a brand or ticker for a user.
type ScanRequest struct {
	UserID string `json:"user_id"`
	Brand  string `json:"brand,omitempty"`
	Ticker string `json:"ticker,omitempty"`
}

// ScanResponse is the result of a scan.
type ScanResponse struct {
	Success     bool            `json:"success"`
	IsNew       bool            `json:"is_new"`
	Creature    CreaturePayload `json:"creature"`
	MarketStorm StormPayload    `json:"market_storm"`
}

// PortfolioResponse summarizes one user's holdings.
type PortfolioResponse struct {
	Creatures             []CreaturePayload `json:"creatures"`
	TotalValue            int               `json:"total_value"`
	DiversificationShield float64           `json:"diversification_shield"`
	TotalCreatures        int               `json:"total_creatures"`
}

// StockInfo is the market slice of a creature detail response.
type StockInfo struct {
	Ticker        string  `json:"ticker"`
	CompanyName   string  `json:"company_name"`
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	Confidence    float64 `json:"confidence"`
}

// CreatureResponse is the full creature detail view.
type CreatureResponse struct {
	Creature          CreaturePayload `json:"creature"`
	PersonalityTraits game.Traits     `json:"personality_traits"`
	MarketStorm       StormPayload    `json:"market_storm"`
	StockInfo         StockInfo       `json:"stock_info"`
}

// HealResponse is the result of healing a creature.
type HealResponse struct {
	Success  bool            `json:"success"`
	Creature CreaturePayload `json:"creature"`
	Message  string          `json:"message"`
}

// SellResponse is the result of selling a creature.
type SellResponse struct {
	Success bool   `json:"success"`
	Value   int    `json:"value"`
	Penalty int    `json:"penalty"`
	Warning string `json:"warning,omitempty"`
	Message string `json:"message"`
}

// SectorsResponse lists the tracked sectors' market status.
type SectorsResponse struct {
	Sectors []lifecycle.SectorStatus `json:"sectors"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Creatures int       `json:"creatures"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
