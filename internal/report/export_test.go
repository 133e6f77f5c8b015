package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/ledger"
)

func sampleTrades() []ledger.Trade {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []ledger.Trade{
		{
			Signature:   "sig-1",
			Timestamp:   base,
			Type:        ledger.TradeBuy,
			TokenMint:   "mint-a",
			TokenSymbol: "AAA",
			TokenAmount: 100,
			USDValue:    classifier.KnownUSD(50),
		},
		{
			Signature:   "sig-2",
			Timestamp:   base.Add(time.Hour),
			Type:        ledger.TradeSell,
			TokenMint:   "mint-a",
			TokenSymbol: "AAA",
			TokenAmount: 100,
			USDValue:    classifier.KnownUSD(80),
			RealizedPnL: classifier.KnownUSD(30),
		},
		{
			Signature:   "sig-3",
			Timestamp:   base.Add(2 * time.Hour),
			Type:        ledger.TradeSell,
			TokenMint:   "mint-b",
			TokenSymbol: "BBB",
			TokenAmount: 10,
			USDValue:    classifier.UnknownUSD(),
			RealizedPnL: classifier.UnknownUSD(),
		},
	}
}

func TestExportTradesCSV(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))

	path, err := exporter.ExportTrades(sampleTrades(), ExportOptions{
		Format:    FormatCSV,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 trades
	assert.Equal(t, ledger.CSVHeaders(), records[0])
	assert.Equal(t, "sig-1", records[1][0])
}

func TestExportTradesJSONSummary(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))

	path, err := exporter.ExportTrades(sampleTrades(), ExportOptions{
		Format:    FormatJSON,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exported struct {
		TradeCount int           `json:"trade_count"`
		Summary    ExportSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &exported))

	assert.Equal(t, 3, exported.TradeCount)
	assert.Equal(t, 1, exported.Summary.BuyCount)
	assert.Equal(t, 2, exported.Summary.SellCount)
	// The unpriced sell is counted separately, never folded in as zero.
	assert.Equal(t, 1, exported.Summary.UnpricedSells)
	assert.InDelta(t, 30.0, exported.Summary.TotalRealizedPnL, 1e-9)
	assert.Equal(t, 1, exported.Summary.WinCount)
	assert.InDelta(t, 100.0, exported.Summary.WinRate, 1e-9)
}

func TestExportTradesFilters(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))
	trades := sampleTrades()

	t.Run("by type", func(t *testing.T) {
		filtered := exporter.filterTrades(trades, ExportOptions{TypeFilter: ledger.TradeSell})
		assert.Len(t, filtered, 2)
	})

	t.Run("by token", func(t *testing.T) {
		filtered := exporter.filterTrades(trades, ExportOptions{TokenFilter: "mint-b"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "sig-3", filtered[0].Signature)
	})

	t.Run("by time window", func(t *testing.T) {
		filtered := exporter.filterTrades(trades, ExportOptions{
			StartTime: trades[1].Timestamp,
			EndTime:   trades[1].Timestamp,
		})
		require.Len(t, filtered, 1)
		assert.Equal(t, "sig-2", filtered[0].Signature)
	})
}

func TestExportTradesNoMatches(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))

	_, err := exporter.ExportTrades(sampleTrades(), ExportOptions{
		Format:      FormatCSV,
		TokenFilter: "mint-missing",
		OutputDir:   t.TempDir(),
	})
	assert.Error(t, err)
}

func TestExportPerformance(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))

	perf := &ledger.WalletPerformance{
		WalletAddress:    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		TotalTrades:      2,
		TotalRealizedPnL: 30,
	}

	path, err := exporter.ExportPerformance(perf, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded ledger.WalletPerformance
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, perf.WalletAddress, decoded.WalletAddress)
	assert.Equal(t, 2, decoded.TotalTrades)
}

func TestExportPerformanceNil(t *testing.T) {
	exporter := NewTradeExporter(zaptest.NewLogger(t))
	_, err := exporter.ExportPerformance(nil, t.TempDir())
	assert.Error(t, err)
}
