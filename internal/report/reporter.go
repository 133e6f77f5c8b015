package report

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/ledger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/logger"
)

// Reporter consumes ledger snapshots after each applied swap: it
// journals trades to a rotating CSV and logs a per-wallet summary. It
// holds no mutation rights over ledger state.
type Reporter struct {
	ledger    *ledger.Ledger
	journal   *logger.SafeCSVWriter
	exporter  *TradeExporter
	exportDir string
	logger    *zap.Logger
}

// NewReporter opens a timestamped trade journal under exportDir/trades.
func NewReporter(ldg *ledger.Ledger, exportDir string, zapLogger *zap.Logger) (*Reporter, error) {
	tradesDir := filepath.Join(exportDir, "trades")
	filename := fmt.Sprintf("trades_%s.csv", time.Now().Format("20060102_150405"))
	csvPath := filepath.Join(tradesDir, filename)

	journal, err := logger.NewSafeCSVWriter(csvPath, ledger.CSVHeaders(), 30*time.Second, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade journal: %w", err)
	}

	zapLogger.Info("Trade journal initialized", zap.String("csv_file", csvPath))

	return &Reporter{
		ledger:    ldg,
		journal:   journal,
		exporter:  NewTradeExporter(zapLogger),
		exportDir: exportDir,
		logger:    zapLogger.Named("report"),
	}, nil
}

// OnApplied is the tracker hook invoked after every applied swap.
func (r *Reporter) OnApplied(wallet string, trades []ledger.Trade) {
	for i := range trades {
		if err := r.journal.WriteRecord(trades[i].ToCSV()); err != nil {
			r.logger.Error("Failed to journal trade",
				zap.String("signature", trades[i].Signature),
				zap.Error(err))
		}
	}
	r.LogSummary(wallet)
}

// LogSummary logs the wallet's current aggregate metrics and its top
// open positions.
func (r *Reporter) LogSummary(wallet string) {
	perf, ok := r.ledger.Performance(wallet)
	if !ok {
		return
	}

	r.logger.Info("💰 Wallet performance",
		zap.String("wallet", wallet),
		zap.Int("total_trades", perf.TotalTrades),
		zap.Int("winning", perf.WinningTrades),
		zap.Int("losing", perf.LosingTrades),
		zap.Float64("win_rate", perf.WinRate),
		zap.Float64("realized_pnl", perf.TotalRealizedPnL),
		zap.Float64("unrealized_pnl", perf.TotalUnrealizedPnL),
		zap.Float64("total_pnl", perf.TotalPnL),
		zap.Float64("roi", perf.ROI),
		zap.Int("open_positions", len(perf.Positions)))

	for _, pos := range r.ledger.TopPositions(wallet, 3) {
		fields := []zap.Field{
			zap.String("wallet", wallet),
			zap.String("token", pos.Symbol),
			zap.Float64("balance", pos.Balance),
			zap.Float64("avg_buy_price", pos.AvgBuyPrice),
			zap.Float64("invested", pos.TotalInvested),
		}
		if pos.UnrealizedPnL.Known {
			fields = append(fields, zap.Float64("unrealized_pnl", pos.UnrealizedPnL.Value))
		} else {
			fields = append(fields, zap.String("unrealized_pnl", "unknown"))
		}
		r.logger.Info("Open position", fields...)
	}
}

// ExportSnapshots writes every tracked wallet's performance snapshot
// and full trade history under the export directory. Called once on
// shutdown.
func (r *Reporter) ExportSnapshots() error {
	var firstErr error
	for _, wallet := range r.ledger.Store().Wallets() {
		perf, ok := r.ledger.Performance(wallet)
		if !ok {
			continue
		}

		if _, err := r.exporter.ExportPerformance(perf, r.exportDir); err != nil {
			r.logger.Error("Failed to export performance snapshot",
				zap.String("wallet", wallet), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}

		if len(perf.Trades) == 0 {
			continue
		}
		if _, err := r.exporter.ExportTrades(perf.Trades, ExportOptions{
			Format:    FormatJSON,
			OutputDir: filepath.Join(r.exportDir, "trades"),
		}); err != nil {
			r.logger.Error("Failed to export trade history",
				zap.String("wallet", wallet), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Flush forces the journal to disk.
func (r *Reporter) Flush() error {
	return r.journal.Flush()
}

// Close flushes and closes the trade journal.
func (r *Reporter) Close() error {
	return r.journal.Close()
}
