package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/nkaruna09/Wealthlings/internal/metrics"
)

// ClientConfig configures the HTTP market data client.
type ClientConfig struct {
	// ChartURL is the daily-candle endpoint; the ticker is appended as a path
	// segment, with range/interval query parameters.
	ChartURL string
	// ProfileURL is the company profile endpoint (name, sector, market cap);
	// the ticker is appended as a path segment.
	ProfileURL string
	Timeout    time.Duration
	RPS        float64
	Burst      int
	SnapshotTTL time.Duration
	ClosesTTL   time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RPS <= 0 {
		c.RPS = 4
	}
	if c.Burst <= 0 {
		c.Burst = 8
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = 5 * time.Minute
	}
	if c.ClosesTTL <= 0 {
		c.ClosesTTL = 5 * time.Minute
	}
}

// Client fetches quotes over HTTP with a token-bucket rate limit, a circuit
// breaker around the upstream, and a TTL cache in front.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   Cache
	metrics *metrics.Registry
}

// NewClient creates an HTTP market data client.
func NewClient(cfg ClientConfig, cache Cache, m *metrics.Registry) *Client {
	cfg.applyDefaults()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "marketdata",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("market data circuit breaker state change")
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: breaker,
		cache:   cache,
		metrics: m,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	} `json:"chart"`
}

type profileResponse struct {
	CompanyName string  `json:"company_name"`
	Sector      string  `json:"sector"`
	MarketCap   float64 `json:"market_cap"`
}

// GetSnapshot implements Provider. A month of daily closes drives the price,
// change, volatility and confidence fields; the profile endpoint supplies
// company name, sector and market cap.
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (Snapshot, error) {
	cacheKey := "md:snapshot:" + ticker
	if b, ok := c.cache.Get(ctx, cacheKey); ok {
		var snap Snapshot
		if err := json.Unmarshal(b, &snap); err == nil {
			c.metrics.CacheHits.WithLabelValues("snapshot").Inc()
			return snap, nil
		}
	}
	c.metrics.CacheMisses.WithLabelValues("snapshot").Inc()

	closes, err := c.fetchCloses(ctx, ticker, "1mo")
	if err != nil {
		return Snapshot{}, err
	}
	if len(closes) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no history for %s", ErrDataUnavailable, ticker)
	}

	profile, err := c.fetchProfile(ctx, ticker)
	if err != nil {
		return Snapshot{}, err
	}

	price, changePct, vol, confidence := trendStats(closes)
	snap := Snapshot{
		Ticker:        ticker,
		CompanyName:   profile.CompanyName,
		Sector:        profile.Sector,
		CurrentPrice:  price,
		ChangePercent: changePct,
		Confidence:    confidence,
		Volatility:    vol,
		MarketCap:     profile.MarketCap,
	}
	if snap.CompanyName == "" {
		snap.CompanyName = ticker
	}
	if snap.Sector == "" {
		snap.Sector = "Unknown"
	}

	if b, err := json.Marshal(snap); err == nil {
		c.cache.Set(ctx, cacheKey, b, c.cfg.SnapshotTTL)
	}
	return snap, nil
}

// GetRecentCloses implements Provider.
func (c *Client) GetRecentCloses(ctx context.Context, ticker string, n int) ([]float64, error) {
	cacheKey := fmt.Sprintf("md:closes:%s:%d", ticker, n)
	if b, ok := c.cache.Get(ctx, cacheKey); ok {
		var closes []float64
		if err := json.Unmarshal(b, &closes); err == nil {
			c.metrics.CacheHits.WithLabelValues("closes").Inc()
			return closes, nil
		}
	}
	c.metrics.CacheMisses.WithLabelValues("closes").Inc()

	rng := "5d"
	if n > 5 {
		rng = "1mo"
	}
	closes, err := c.fetchCloses(ctx, ticker, rng)
	if err != nil {
		return nil, err
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: no closes for %s", ErrDataUnavailable, ticker)
	}
	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}

	if b, err := json.Marshal(closes); err == nil {
		c.cache.Set(ctx, cacheKey, b, c.cfg.ClosesTTL)
	}
	return closes, nil
}

// fetchCloses returns the non-null daily closes for a ticker. A 404 or an
// upstream "no data" error yields an empty slice rather than an error so the
// circuit breaker only counts genuine failures.
func (c *Client) fetchCloses(ctx context.Context, ticker, rng string) ([]float64, error) {
	url := fmt.Sprintf("%s/%s?range=%s&interval=1d", c.cfg.ChartURL, ticker, rng)

	body, err := c.do(ctx, "chart", url)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil // 404: ticker unknown upstream
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if parsed.Chart.Error != nil || len(parsed.Chart.Result) == 0 ||
		len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	raw := parsed.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	return closes, nil
}

func (c *Client) fetchProfile(ctx context.Context, ticker string) (profileResponse, error) {
	body, err := c.do(ctx, "profile", c.cfg.ProfileURL+"/"+ticker)
	if err != nil {
		return profileResponse{}, err
	}
	if body == nil {
		// Profile missing is survivable; the chart already proved the ticker.
		return profileResponse{}, nil
	}
	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return profileResponse{}, fmt.Errorf("decode profile response: %w", err)
	}
	return profile, nil
}

// do executes one rate-limited, breaker-guarded GET. A 404 returns (nil, nil).
func (c *Client) do(ctx context.Context, endpoint, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return []byte(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("market data %s request: %w", endpoint, err)
	}

	body := result.([]byte)
	if body == nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "not_found").Inc()
	} else {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "ok").Inc()
	}
	return body, nil
}
