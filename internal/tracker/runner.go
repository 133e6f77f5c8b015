// internal/tracker/runner.go
package tracker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/config"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/ledger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/logger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/pricer"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/report"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/stream"
)

// Runner wires configuration into a running tracker and handles
// graceful shutdown.
type Runner struct {
	logger     *logger.Logger
	config     *config.Config
	tracker    *Tracker
	reporter   *report.Reporter
	shutdownCh chan os.Signal
}

func NewRunner(log *logger.Logger) *Runner {
	return &Runner{
		logger:     log,
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize loads configuration and builds the pipeline.
func (r *Runner) Initialize(configPath string) error {
	startupLog := r.logger.WithOperation("startup")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = cfg

	priceWait := time.Duration(cfg.PriceTimeoutMs) * time.Millisecond

	prc := pricer.NewJupiterPricer(pricer.Options{
		PriceTTL: time.Duration(cfg.PriceTTLSeconds) * time.Second,
		Timeout:  priceWait,
		Retries:  cfg.Retries,
	}, r.logger.Logger)

	cls, err := classifier.New(classifier.Config{
		Pricer:     prc,
		NoiseFloor: cfg.NoiseFloor,
		PriceWait:  priceWait,
		Logger:     r.logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	store := ledger.NewMemoryStore()
	ldg, err := ledger.NewLedger(ledger.LedgerConfig{
		Store:         store,
		Pricer:        prc,
		DustThreshold: cfg.DustThreshold,
		MinPnL:        cfg.MinPnLThreshold,
		PriceWait:     priceWait,
		Logger:        r.logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build ledger: %w", err)
	}

	reporter, err := report.NewReporter(ldg, cfg.ExportDir, r.logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to build reporter: %w", err)
	}
	r.reporter = reporter

	source, err := stream.NewSolanaSource(stream.SourceConfig{
		RPCURL:  cfg.RPCList[0],
		WSURL:   cfg.WebSocketURL,
		Wallets: cfg.Wallets,
		Logger:  r.logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build event source: %w", err)
	}

	trk, err := New(Config{
		Source:     source,
		Classifier: cls,
		BaseSet:    classifier.NewBaseSet(cfg.BaseMints),
		Ledger:     ldg,
		Logger:     r.logger,
		OnApplied:  reporter.OnApplied,
	})
	if err != nil {
		return fmt.Errorf("failed to build tracker: %w", err)
	}
	r.tracker = trk

	startupLog.Info("🚀 Tracker initialized",
		zap.Int("wallets", len(cfg.Wallets)),
		zap.Int("base_mints", len(cfg.BaseMints)),
		zap.Float64("noise_floor", cfg.NoiseFloor),
		zap.Float64("dust_threshold", cfg.DustThreshold))

	return nil
}

// Run blocks until a shutdown signal arrives or the pipeline fails.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	err := r.tracker.Run(runCtx)

	// Final state goes to disk before the journal closes.
	if exportErr := r.reporter.ExportSnapshots(); exportErr != nil {
		r.logger.Warn("Failed to export final snapshots", zap.Error(exportErr))
	}
	if flushErr := r.reporter.Close(); flushErr != nil {
		r.logger.Warn("Failed to close trade journal", zap.Error(flushErr))
	}

	if err != nil && runCtx.Err() == nil {
		return fmt.Errorf("tracker failed: %w", err)
	}

	r.logger.Info("✅ Tracker stopped")
	return nil
}
