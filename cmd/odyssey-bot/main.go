package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/solstice-labs/odyssey-bot/pkg/bot"
	"github.com/solstice-labs/odyssey-bot/pkg/chain"
	"github.com/solstice-labs/odyssey-bot/pkg/config"
	"github.com/solstice-labs/odyssey-bot/pkg/history"
	"github.com/solstice-labs/odyssey-bot/pkg/odyssey"
	"github.com/solstice-labs/odyssey-bot/pkg/wallet"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
	daemon     = flag.Bool("daemon", false, "Run unattended on the configured schedule instead of the interactive menu")
	runOnce    = flag.Bool("once", false, "Run the full flow once for all wallets and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Sonic Odyssey bot")

	wallets, err := wallet.LoadFile(cfg.Bot.CredentialsFile)
	if err != nil {
		logger.Fatal("Failed to load wallets", zap.Error(err))
	}
	logger.Info("Wallets loaded", zap.Int("count", len(wallets)))

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Fatal("Failed to open history database", zap.Error(err))
		}
		defer store.Close()
	}

	apiClient := odyssey.NewClient(cfg.API.BaseURL,
		odyssey.WithLogger(logger),
		odyssey.WithHTTPClient(&http.Client{Timeout: cfg.API.RequestTimeout}),
		odyssey.WithUserAgent(cfg.API.UserAgent),
		odyssey.WithOrigin(cfg.API.Origin),
	)

	submitter := chain.New(cfg.RPC.URL, cfg.RPC.RequestsPerSecond, cfg.RPC.Burst,
		chain.WithLogger(logger),
		chain.WithRetry(cfg.Bot.MaxRetries, cfg.Bot.RetryDelay),
		chain.WithConfirmTimeout(cfg.RPC.ConfirmTimeout),
	)

	var recorder bot.Recorder
	if store != nil {
		recorder = store
	}
	engine := bot.NewEngine(cfg.Bot, apiClient, submitter, recorder, wallets, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *runOnce:
		if err := engine.RunAll(ctx); err != nil {
			logger.Fatal("Run failed", zap.Error(err))
		}
	case *daemon:
		runDaemon(ctx, cancel, cfg, engine, logger)
	default:
		menu := bot.NewMenu(engine, os.Stdin, os.Stdout)
		if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal("Menu failed", zap.Error(err))
		}
	}

	logger.Info("Bot stopped")
}

// runDaemon runs the full flow on the configured cron schedule until a
// shutdown signal arrives. The monitoring listener, when enabled, serves
// health and Prometheus metrics.
func runDaemon(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, engine *bot.Engine, logger *zap.Logger) {
	c := cron.New()
	_, err := c.AddFunc(cfg.Bot.Schedule, func() {
		logger.Info("Scheduled run starting", zap.String("schedule", cfg.Bot.Schedule))
		if err := engine.RunAll(ctx); err != nil {
			logger.Error("Scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Invalid schedule", zap.String("schedule", cfg.Bot.Schedule), zap.Error(err))
	}
	c.Start()
	defer c.Stop()
	logger.Info("Scheduler started", zap.String("schedule", cfg.Bot.Schedule))

	var server *http.Server
	if cfg.Monitoring.Enabled {
		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Handle("/metrics", promhttp.Handler())

		server = &http.Server{
			Addr:         cfg.Monitoring.ListenAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("Monitoring listener started", zap.String("addr", cfg.Monitoring.ListenAddr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Monitoring listener failed", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Monitoring listener shutdown error", zap.Error(err))
		}
	}
}
