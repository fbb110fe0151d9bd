package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nkaruna09/Wealthlings/internal/lifecycle"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

type handlers struct {
	lifecycle *lifecycle.Lifecycle
	resolver  *marketdata.Resolver
	store     *portfolio.Store
	hub       *Hub
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(requestIDKey).(string)
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code, RequestID: requestID})
}

// scan handles POST /api/scan.
func (h *handlers) scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.UserID == "" {
		req.UserID = "default_user"
	}

	ticker := req.Ticker
	if ticker == "" {
		if req.Brand == "" {
			h.writeError(w, r, http.StatusBadRequest, "invalid_request", "brand or ticker is required")
			return
		}
		resolved, ok := h.resolver.Resolve(req.Brand)
		if !ok {
			h.writeError(w, r, http.StatusNotFound, "brand_unresolved",
				fmt.Sprintf("could not find stock ticker for %s", req.Brand))
			return
		}
		ticker = resolved
	}

	result, err := h.lifecycle.Scan(r.Context(), req.UserID, ticker)
	if err != nil {
		if errors.Is(err, marketdata.ErrDataUnavailable) {
			h.writeError(w, r, http.StatusNotFound, "data_unavailable",
				fmt.Sprintf("no market data for %s", ticker))
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "scan_failed", "scan failed")
		return
	}

	h.writeJSON(w, http.StatusOK, ScanResponse{
		Success:  true,
		IsNew:    result.IsNew,
		Creature: creaturePayload(result.Creature),
		MarketStorm: StormPayload{
			Active:         result.StormActive,
			Severity:       result.StormSeverity,
			AffectedSector: result.Creature.Sector,
		},
	})
}

// getPortfolio handles GET /api/portfolio/{userID}.
func (h *handlers) getPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	summary := h.lifecycle.Portfolio(userID)

	creatures := make([]CreaturePayload, 0, len(summary.Creatures))
	for _, c := range summary.Creatures {
		creatures = append(creatures, creaturePayload(c))
	}
	h.writeJSON(w, http.StatusOK, PortfolioResponse{
		Creatures:             creatures,
		TotalValue:            summary.TotalValue,
		DiversificationShield: summary.DiversificationShield,
		TotalCreatures:        summary.TotalCreatures,
	})
}

// getCreature handles GET /api/creature/{id}.
func (h *handlers) getCreature(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	creature, err := h.lifecycle.GetCreature(id)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "creature_not_found", "creature not found")
		return
	}

	stormActive, severity := h.lifecycle.DetectStorm(r.Context(), creature.Sector)
	h.writeJSON(w, http.StatusOK, CreatureResponse{
		Creature:          creaturePayload(creature),
		PersonalityTraits: creature.Personality.Traits(),
		MarketStorm:       StormPayload{Active: stormActive, Severity: severity},
		StockInfo: StockInfo{
			Ticker:        creature.Ticker,
			CompanyName:   creature.CompanyName,
			CurrentPrice:  creature.CurrentPrice,
			ChangePercent: creature.ChangePercent,
			Confidence:    creature.Confidence,
		},
	})
}

// heal handles POST /api/creature/{id}/heal.
func (h *handlers) heal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	creature, err := h.lifecycle.Heal(id)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "creature_not_found", "creature not found")
		return
	}
	h.writeJSON(w, http.StatusOK, HealResponse{
		Success:  true,
		Creature: creaturePayload(creature),
		Message:  fmt.Sprintf("%s feels better!", creature.Name),
	})
}

// sell handles POST /api/creature/{id}/sell.
func (h *handlers) sell(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	receipt, err := h.lifecycle.Sell(r.Context(), id)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "creature_not_found", "creature not found")
		return
	}
	h.writeJSON(w, http.StatusOK, SellResponse{
		Success: true,
		Value:   receipt.Value,
		Penalty: receipt.Penalty,
		Warning: receipt.Warning,
		Message: fmt.Sprintf("%s has been released.", receipt.Creature.Name),
	})
}

// sectors handles GET /api/market/sectors.
func (h *handlers) sectors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, SectorsResponse{
		Sectors: h.lifecycle.SectorStatuses(r.Context()),
	})
}

// health handles GET /api/health.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Creatures: h.store.Len(),
		Timestamp: time.Now().UTC(),
	})
}

// notFound handles unmatched routes.
func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found", "the requested endpoint does not exist")
}
