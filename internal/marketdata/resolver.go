package marketdata

import (
	"sort"
	"strings"
)

// brandTickers maps well-known consumer brand names to their stock tickers.
// Matching is case-insensitive substring, so "Doritos chips" resolves to PEP.
var brandTickers = map[string]string{
	// Tech
	"Apple":     "AAPL",
	"Microsoft": "MSFT",
	"Google":    "GOOGL",
	"Alphabet":  "GOOGL",
	"Amazon":    "AMZN",
	"Meta":      "META",
	"Facebook":  "META",
	"Netflix":   "NFLX",
	"Tesla":     "TSLA",
	"Sony":      "SONY",
	"Nintendo":  "NTDOY",
	"Samsung":   "SSNLF",
	"Intel":     "INTC",
	"AMD":       "AMD",
	"NVIDIA":    "NVDA",
	"Nvidia":    "NVDA",

	// Gaming
	"Roblox":          "RBLX",
	"Electronic Arts": "EA",
	"EA":              "EA",
	"Activision":      "ATVI",
	"Unity":           "U",

	// Streaming and entertainment
	"Spotify":     "SPOT",
	"Disney":      "DIS",
	"Warner Bros": "WBD",
	"Paramount":   "PARA",

	// Food and beverage
	"McDonald's":    "MCD",
	"McDonalds":     "MCD",
	"Coca-Cola":     "KO",
	"Coca Cola":     "KO",
	"Pepsi":         "PEP",
	"PepsiCo":       "PEP",
	"Starbucks":     "SBUX",
	"Chipotle":      "CMG",
	"Yum Brands":    "YUM",
	"Domino's":      "DPZ",
	"Dominos":       "DPZ",
	"Doritos":       "PEP",
	"Wendy's":       "WEN",
	"General Mills": "GIS",
	"Kellogg":       "K",
	"Kraft Heinz":   "KHC",
	"Mondelez":      "MDLZ",
	"Nestle":        "NSRGY",

	// Retail
	"Walmart":    "WMT",
	"Target":     "TGT",
	"Costco":     "COST",
	"Home Depot": "HD",
	"Lowe's":     "LOW",
	"Best Buy":   "BBY",

	// Apparel
	"Nike":         "NKE",
	"Adidas":       "ADDYY",
	"Lululemon":    "LULU",
	"Gap":          "GPS",
	"Ralph Lauren": "RL",
	"Under Armour": "UAA",

	// Automotive
	"Ford":           "F",
	"General Motors": "GM",
	"GM":             "GM",
	"Toyota":         "TM",
	"Honda":          "HMC",

	// Other
	"Mattel":            "MAT",
	"Hasbro":            "HAS",
	"Johnson & Johnson": "JNJ",
	"Procter & Gamble":  "PG",
	"P&G":               "PG",
	"Visa":              "V",
	"Mastercard":        "MA",
	"PayPal":            "PYPL",
	"Square":            "SQ",
}

// Resolver maps brand names observed by the scanner to stock tickers.
type Resolver struct {
	// brands sorted longest-first so "Coca-Cola" wins over shorter matches
	// and resolution stays deterministic.
	brands []string
}

// NewResolver returns a brand-to-ticker resolver backed by the fixed table.
func NewResolver() *Resolver {
	brands := make([]string, 0, len(brandTickers))
	for brand := range brandTickers {
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		if len(brands[i]) != len(brands[j]) {
			return len(brands[i]) > len(brands[j])
		}
		return brands[i] < brands[j]
	})
	return &Resolver{brands: brands}
}

// Resolve returns the ticker for a brand name, or false when the brand is
// unknown. The brand text may be a loose match (OCR output, partial names),
// so an exact match is tried first, then a substring match.
func (r *Resolver) Resolve(brandName string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(brandName))
	if needle == "" {
		return "", false
	}
	for brand, ticker := range brandTickers {
		if strings.ToLower(brand) == needle {
			return ticker, true
		}
	}
	for _, brand := range r.brands {
		if strings.Contains(needle, strings.ToLower(brand)) {
			return brandTickers[brand], true
		}
	}
	return "", false
}
