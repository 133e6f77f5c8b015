package ledger

import (
	"time"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

// Position is one open holding of a non-base token for one wallet.
// A position with zero balance is removed from its wallet's map; it is
// never kept around empty.
type Position struct {
	Mint   string `json:"mint"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	Balance       float64 `json:"balance"`         // UI units, >= 0
	AvgBuyPrice   float64 `json:"avg_buy_price"`   // USD per unit, weighted average
	TotalInvested float64 `json:"total_invested"`  // USD cost basis of current balance

	CurrentValue         classifier.USDAmount `json:"current_value"`
	UnrealizedPnL        classifier.USDAmount `json:"unrealized_pnl"`
	UnrealizedPnLPercent classifier.USDAmount `json:"unrealized_pnl_percent"`

	OpenedAt  time.Time `json:"opened_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Trades that touched this position, oldest first.
	Trades []Trade `json:"trades"`
}

// Revalue refreshes current value and unrealized P&L against a spot
// price. An unknown price clears the valuation instead of zeroing it.
func (p *Position) Revalue(spotPrice classifier.USDAmount) {
	if !spotPrice.Known || p.Balance <= 0 {
		p.CurrentValue = classifier.UnknownUSD()
		p.UnrealizedPnL = classifier.UnknownUSD()
		p.UnrealizedPnLPercent = classifier.UnknownUSD()
		return
	}

	value := p.Balance * spotPrice.Value
	p.CurrentValue = classifier.KnownUSD(value)
	p.UnrealizedPnL = classifier.KnownUSD(value - p.TotalInvested)
	if p.TotalInvested > 0 {
		p.UnrealizedPnLPercent = classifier.KnownUSD((value - p.TotalInvested) / p.TotalInvested * 100)
	} else {
		p.UnrealizedPnLPercent = classifier.KnownUSD(0)
	}
}

// clone returns a deep copy safe to hand outside the ledger.
func (p *Position) clone() *Position {
	cp := *p
	cp.Trades = make([]Trade, len(p.Trades))
	copy(cp.Trades, p.Trades)
	return &cp
}
