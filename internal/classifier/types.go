// internal/classifier/types.go
package classifier

import (
	"time"
)

// USDAmount is an optional USD value. Known must be checked before
// Value is used: an unavailable price is not the same as a zero price,
// and collapsing the two understates P&L downstream.
type USDAmount struct {
	Value float64 `json:"value"`
	Known bool    `json:"known"`
}

// KnownUSD wraps a resolved USD value.
func KnownUSD(v float64) USDAmount {
	return USDAmount{Value: v, Known: true}
}

// UnknownUSD marks a value the pricer could not resolve.
func UnknownUSD() USDAmount {
	return USDAmount{}
}

// Or returns the value when known, otherwise the fallback.
func (u USDAmount) Or(fallback float64) float64 {
	if u.Known {
		return u.Value
	}
	return fallback
}

// TokenLeg is one side of a swap. Immutable once constructed.
type TokenLeg struct {
	Mint      string    `json:"mint"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	RawAmount uint64    `json:"raw_amount"` // smallest units
	UIAmount  float64   `json:"ui_amount"`  // raw / 10^decimals
	Decimals  uint8     `json:"decimals"`
	USDValue  USDAmount `json:"usd_value"`
}

// SwapEvent is a classified swap for one tracked wallet.
type SwapEvent struct {
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
	Wallet    string    `json:"wallet"`
	Venue     string    `json:"venue,omitempty"`
	InputLeg  TokenLeg  `json:"input_leg"`
	OutputLeg TokenLeg  `json:"output_leg"`
}

// TokenBalanceChange is one mint's pre/post balance for the tracked
// wallet within a single transaction.
type TokenBalanceChange struct {
	Mint     string
	Decimals uint8
	PreUI    float64
	PostUI   float64
}

// Delta returns the signed UI-amount change.
func (c TokenBalanceChange) Delta() float64 {
	return c.PostUI - c.PreUI
}

// RawDeltas is the raw per-transaction record the event source delivers:
// every token balance change observed for the wallet, plus the native
// lamport change net of the transaction fee.
type RawDeltas struct {
	Signature     string
	Wallet        string
	BlockTime     time.Time
	ProgramID     string // DEX program that produced the swap, if known
	TokenChanges  []TokenBalanceChange
	LamportsDelta int64 // native balance change, fee excluded
}
