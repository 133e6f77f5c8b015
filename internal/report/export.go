package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/ledger"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	StartTime   time.Time
	EndTime     time.Time
	TokenFilter string           // Filter by token mint
	TypeFilter  ledger.TradeType // Filter by trade type (buy/sell)
	OutputDir   string
}

// TradeExporter handles trade export functionality
type TradeExporter struct {
	logger *zap.Logger
}

// NewTradeExporter creates a new trade exporter
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{
		logger: logger.Named("export"),
	}
}

// ExportTrades exports trades based on the provided options
func (te *TradeExporter) ExportTrades(trades []ledger.Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	filename := te.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// ExportPerformance writes one wallet's full performance snapshot as JSON.
func (te *TradeExporter) ExportPerformance(perf *ledger.WalletPerformance, outputDir string) (string, error) {
	if perf == nil {
		return "", fmt.Errorf("performance snapshot cannot be nil")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("performance_%s_%s.json",
		shortAddr(perf.WalletAddress), time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(outputDir, filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create performance file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(perf); err != nil {
		return "", fmt.Errorf("failed to encode performance: %w", err)
	}

	te.logger.Info("Performance exported",
		zap.String("file", outputPath),
		zap.String("wallet", perf.WalletAddress))

	return outputPath, nil
}

// filterTrades applies filters to the trade list
func (te *TradeExporter) filterTrades(trades []ledger.Trade, options ExportOptions) []ledger.Trade {
	var filtered []ledger.Trade

	for _, trade := range trades {
		if !options.StartTime.IsZero() && trade.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && trade.Timestamp.After(options.EndTime) {
			continue
		}
		if options.TokenFilter != "" && trade.TokenMint != options.TokenFilter {
			continue
		}
		if options.TypeFilter != "" && trade.Type != options.TypeFilter {
			continue
		}

		filtered = append(filtered, trade)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	var prefix string
	if options.TypeFilter != "" {
		prefix = fmt.Sprintf("trades_%s", options.TypeFilter)
	} else {
		prefix = "trades_all"
	}

	if options.TokenFilter != "" {
		prefix += "_" + shortAddr(options.TokenFilter)
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func (te *TradeExporter) exportToCSV(trades []ledger.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(ledger.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, trade := range trades {
		if err := writer.Write(trade.ToCSV()); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	return nil
}

func (te *TradeExporter) exportToJSON(trades []ledger.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time      `json:"export_time"`
		TradeCount int            `json:"trade_count"`
		Trades     []ledger.Trade `json:"trades"`
		Summary    ExportSummary  `json:"summary"`
	}{
		ExportTime: time.Now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    calculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// calculateSummary calculates summary statistics for the export.
// Realized P&L sums only trades whose P&L is known; unpriced sells are
// counted separately instead of flattening them to zero.
func calculateSummary(trades []ledger.Trade) ExportSummary {
	summary := ExportSummary{
		TotalTrades: len(trades),
	}

	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].Timestamp
	summary.EndDate = trades[len(trades)-1].Timestamp

	tokenSet := make(map[string]bool)

	for _, trade := range trades {
		tokenSet[trade.TokenMint] = true

		switch trade.Type {
		case ledger.TradeBuy:
			summary.BuyCount++
			if trade.USDValue.Known {
				summary.TotalBuyVolume += trade.USDValue.Value
			}
		case ledger.TradeSell:
			summary.SellCount++
			if trade.USDValue.Known {
				summary.TotalSellVolume += trade.USDValue.Value
			}
			if trade.RealizedPnL.Known {
				summary.TotalRealizedPnL += trade.RealizedPnL.Value
				if trade.RealizedPnL.Value > 0 {
					summary.WinCount++
				} else if trade.RealizedPnL.Value < 0 {
					summary.LossCount++
				}
			} else {
				summary.UnpricedSells++
			}
		}
	}

	summary.UniqueTokens = len(tokenSet)
	summary.TotalVolume = summary.TotalBuyVolume + summary.TotalSellVolume

	pricedSells := summary.SellCount - summary.UnpricedSells
	if pricedSells > 0 {
		summary.WinRate = float64(summary.WinCount) / float64(pricedSells) * 100
		summary.AvgPnL = summary.TotalRealizedPnL / float64(pricedSells)
	}

	return summary
}

// ExportSummary contains summary statistics for exported trades
type ExportSummary struct {
	TotalTrades      int       `json:"total_trades"`
	BuyCount         int       `json:"buy_count"`
	SellCount        int       `json:"sell_count"`
	UnpricedSells    int       `json:"unpriced_sells"`
	UniqueTokens     int       `json:"unique_tokens"`
	TotalVolume      float64   `json:"total_volume"`
	TotalBuyVolume   float64   `json:"total_buy_volume"`
	TotalSellVolume  float64   `json:"total_sell_volume"`
	TotalRealizedPnL float64   `json:"total_realized_pnl"`
	WinCount         int       `json:"win_count"`
	LossCount        int       `json:"loss_count"`
	WinRate          float64   `json:"win_rate"`
	AvgPnL           float64   `json:"avg_pnl"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

func shortAddr(addr string) string {
	if len(addr) >= 8 {
		return addr[:8]
	}
	return addr
}
