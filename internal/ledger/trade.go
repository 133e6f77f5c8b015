package ledger

import (
	"fmt"
	"time"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

// TradeType is the ledger mutation a trade records.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Trade is an immutable record of one applied ledger mutation.
type Trade struct {
	Signature   string    `json:"signature"`
	Timestamp   time.Time `json:"timestamp"`
	Wallet      string    `json:"wallet"`
	Type        TradeType `json:"type"`
	TokenMint   string    `json:"token_mint"`
	TokenSymbol string    `json:"token_symbol"`

	// TokenAmount is the amount actually applied to the position. On a
	// partial-tracking sell this is less than the leg amount.
	TokenAmount   float64              `json:"token_amount"`
	PricePerToken classifier.USDAmount `json:"price_per_token"`
	USDValue      classifier.USDAmount `json:"usd_value"`

	// Sell only. Unknown when the received USD value could not be priced.
	RealizedPnL        classifier.USDAmount `json:"realized_pnl,omitempty"`
	RealizedPnLPercent classifier.USDAmount `json:"realized_pnl_percent,omitempty"`

	// PartialTracking flags a sell of more than was ever observed bought.
	PartialTracking bool `json:"partial_tracking,omitempty"`

	Venue string `json:"venue,omitempty"`
}

// ToCSV converts the trade to a CSV record.
func (t *Trade) ToCSV() []string {
	return []string{
		t.Signature,
		t.Timestamp.Format(time.RFC3339),
		t.Wallet,
		t.TokenMint,
		t.TokenSymbol,
		string(t.Type),
		formatFloat(t.TokenAmount),
		formatUSD(t.PricePerToken),
		formatUSD(t.USDValue),
		formatUSD(t.RealizedPnL),
		formatUSD(t.RealizedPnLPercent),
		formatBool(t.PartialTracking),
		t.Venue,
	}
}

// CSVHeaders returns the header row for trade CSV files.
func CSVHeaders() []string {
	return []string{
		"signature",
		"timestamp",
		"wallet",
		"token_mint",
		"token_symbol",
		"type",
		"token_amount",
		"price_per_token",
		"usd_value",
		"realized_pnl",
		"realized_pnl_percent",
		"partial_tracking",
		"venue",
	}
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%.6f", f)
}

// formatUSD renders unknown values as empty cells so consumers never
// mistake them for zero.
func formatUSD(u classifier.USDAmount) string {
	if !u.Known {
		return ""
	}
	return fmt.Sprintf("%.6f", u.Value)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
