package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nkaruna09/Wealthlings/internal/api"
	"github.com/nkaruna09/Wealthlings/internal/config"
	"github.com/nkaruna09/Wealthlings/internal/game"
	"github.com/nkaruna09/Wealthlings/internal/lifecycle"
	"github.com/nkaruna09/Wealthlings/internal/marketdata"
	"github.com/nkaruna09/Wealthlings/internal/metrics"
	"github.com/nkaruna09/Wealthlings/internal/portfolio"
	"github.com/nkaruna09/Wealthlings/internal/sweep"
)

const (
	appName = "wealthlings"
	version = "v1.0.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Wealthlings creature engine",
		Long:    "Wealthlings turns brand scans into stock-backed creatures that level up with engagement and weather market storms.",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and market sweeper",
		RunE:  runServe,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [brand or ticker]",
		Short: "Scan a brand once and print the resulting creature",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().String("user", "default_user", "User id to scan as")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a single market sweep and exit",
		RunE:  runSweep,
	}

	rootCmd.AddCommand(serveCmd, scanCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

type engine struct {
	cfg       config.Config
	store     *portfolio.Store
	lifecycle *lifecycle.Lifecycle
	sweeper   func(notify sweep.Notifier) *sweep.Sweeper
	resolver  *marketdata.Resolver
	metrics   *metrics.Registry
}

func buildEngine() (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	m := metrics.New()

	var provider marketdata.Provider
	switch cfg.Market.Provider {
	case "http":
		cache := marketdata.NewCache(cfg.Market.RedisAddr)
		provider = marketdata.NewClient(marketdata.ClientConfig{
			ChartURL:    cfg.Market.ChartURL,
			ProfileURL:  cfg.Market.ProfileURL,
			Timeout:     time.Duration(cfg.Market.TimeoutSeconds) * time.Second,
			RPS:         cfg.Market.RPS,
			Burst:       cfg.Market.Burst,
			SnapshotTTL: time.Duration(cfg.Market.SnapshotTTLSeconds) * time.Second,
			ClosesTTL:   time.Duration(cfg.Market.ClosesTTLSeconds) * time.Second,
		}, cache, m)
	case "sim":
		provider = marketdata.NewSimProvider()
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Market.Provider)
	}

	store := portfolio.NewStore()
	storms := game.NewStormDetector(provider)
	lc := lifecycle.New(store, provider, storms, m)

	return &engine{
		cfg:       cfg,
		store:     store,
		lifecycle: lc,
		sweeper: func(notify sweep.Notifier) *sweep.Sweeper {
			return sweep.New(store, provider, storms, m, cfg.SweepInterval(), notify)
		},
		resolver: marketdata.NewResolver(),
		metrics:  m,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(eng.cfg.Server, eng.lifecycle, eng.resolver, eng.store, eng.metrics)

	if !eng.cfg.Sweep.Disabled {
		sweeper := eng.sweeper(server.Hub().Broadcast)
		go func() {
			if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("sweeper exited")
			}
		}()
	} else {
		log.Warn().Msg("market sweeper disabled by config")
	}

	return server.Start(ctx)
}

func runScan(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")

	ticker := args[0]
	if resolved, ok := eng.resolver.Resolve(ticker); ok {
		ticker = resolved
	}

	result, err := eng.lifecycle.Scan(cmd.Context(), user, ticker)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result.Creature, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	eng.sweeper(nil).RunOnce(ctx)
	return nil
}
