// Package api is the HTTP transport over the creature engine. The engine
// itself never imports this package; everything here is translation between
// JSON and lifecycle calls.
package api

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/nkaruna09/Wealthlings/internal/config"
	"github.com/nkaruna09/Wealthlings/internal/lifecycle"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server is the HTTP front end.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers
	metrics  *metrics.Registry
	hub      *Hub
}

// NewServer wires the HTTP surface over the engine.
func NewServer(cfg config.ServerConfig, lc *lifecycle.Lifecycle, resolver *marketdata.Resolver, store *portfolio.Store, m *metrics.Registry) *Server {
	hub := NewHub()
	s := &Server{
		router:  mux.NewRouter(),
		metrics: m,
		hub:     hub,
		handlers: &handlers{
			lifecycle: lc,
			resolver:  resolver,
			store:     store,
			hub:       hub,
		},
	}
	s.routes()

	s.server = &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}
	return s
}

// Hub returns the storm event hub so the sweeper can publish into it.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the root handler, used directly by httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.observeMiddleware)

	h := s.handlers
	s.router.HandleFunc("/api/scan", h.scan).Methods(http.MethodPost).Name("scan")
	s.router.HandleFunc("/api/portfolio/{userID}", h.getPortfolio).Methods(http.MethodGet).Name("portfolio")
	s.router.HandleFunc("/api/creature/{id}", h.getCreature).Methods(http.MethodGet).Name("creature")
	s.router.HandleFunc("/api/creature/{id}/heal", h.heal).Methods(http.MethodPost).Name("heal")
	s.router.HandleFunc("/api/creature/{id}/sell", h.sell).Methods(http.MethodPost).Name("sell")
	s.router.HandleFunc("/api/market/sectors", h.sectors).Methods(http.MethodGet).Name("sectors")
	s.router.HandleFunc("/api/health", h.health).Methods(http.MethodGet).Name("health")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet).Name("metrics")
	s.router.HandleFunc("/ws/storms", s.hub.serveWS).Methods(http.MethodGet).Name("ws_storms")

	s.router.NotFoundHandler = http.HandlerFunc(h.notFound)
}

// Start serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("http server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.hub.Close()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade pass through the metrics wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil && current.GetName() != "" {
			route = current.GetName()
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
