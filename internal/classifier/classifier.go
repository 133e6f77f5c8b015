// =============================
// File: internal/classifier/classifier.go
// =============================
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/pricer"
	"go.uber.org/zap"
)

// ErrNoSwap is returned when a transaction's balance deltas do not form
// a swap (fewer than two qualifying mints, same-mint legs, plain
// transfers). It is a skip signal, not a failure.
var ErrNoSwap = errors.New("classifier: no swap detected")

// Classifier turns raw balance-delta records into typed swap events.
type Classifier struct {
	pricer     pricer.Pricer
	noiseFloor float64
	priceWait  time.Duration
	logger     *zap.Logger
}

type Config struct {
	Pricer     pricer.Pricer
	NoiseFloor float64       // deltas at or below this are dust
	PriceWait  time.Duration // per-leg budget for pricer calls
	Logger     *zap.Logger
}

func New(cfg Config) (*Classifier, error) {
	if cfg.Pricer == nil {
		return nil, fmt.Errorf("pricer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	noiseFloor := cfg.NoiseFloor
	if noiseFloor <= 0 {
		noiseFloor = 0.0001
	}
	priceWait := cfg.PriceWait
	if priceWait <= 0 {
		priceWait = 5 * time.Second
	}
	return &Classifier{
		pricer:     cfg.Pricer,
		noiseFloor: noiseFloor,
		priceWait:  priceWait,
		logger:     cfg.Logger.Named("classifier"),
	}, nil
}

// Classify converts one transaction's balance deltas into a SwapEvent.
// Returns ErrNoSwap when the deltas do not describe a swap.
func (c *Classifier) Classify(ctx context.Context, raw *RawDeltas) (*SwapEvent, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw deltas cannot be nil")
	}
	if raw.Signature == "" {
		return nil, fmt.Errorf("raw deltas missing signature")
	}

	extractor := extractorFor(raw.ProgramID)
	in, out, ok := extractor.Extract(raw, c.noiseFloor)
	if !ok {
		c.logger.Debug("no qualifying swap legs",
			zap.String("signature", raw.Signature),
			zap.String("venue", extractor.Name()),
			zap.Int("token_changes", len(raw.TokenChanges)))
		return nil, ErrNoSwap
	}
	if in.mint == out.mint {
		return nil, ErrNoSwap
	}

	event := &SwapEvent{
		Signature: raw.Signature,
		Timestamp: raw.BlockTime,
		Wallet:    raw.Wallet,
		Venue:     extractor.Name(),
		InputLeg:  c.buildLeg(ctx, in),
		OutputLeg: c.buildLeg(ctx, out),
	}

	c.logger.Debug("swap classified",
		zap.String("signature", event.Signature),
		zap.String("wallet", event.Wallet),
		zap.String("venue", event.Venue),
		zap.String("input_mint", event.InputLeg.Mint),
		zap.Float64("input_amount", event.InputLeg.UIAmount),
		zap.String("output_mint", event.OutputLeg.Mint),
		zap.Float64("output_amount", event.OutputLeg.UIAmount))

	return event, nil
}

// buildLeg fills in metadata and USD valuation for one leg. A pricer
// failure leaves the valuation unknown rather than zero.
func (c *Classifier) buildLeg(ctx context.Context, leg rawLeg) TokenLeg {
	priceCtx, cancel := context.WithTimeout(ctx, c.priceWait)
	defer cancel()

	built := TokenLeg{
		Mint:      leg.mint,
		RawAmount: uint64(math.Round(leg.uiAmount * math.Pow10(int(leg.decimals)))),
		UIAmount:  leg.uiAmount,
		Decimals:  leg.decimals,
		USDValue:  UnknownUSD(),
	}

	meta, err := c.pricer.TokenMeta(priceCtx, leg.mint)
	if err == nil {
		built.Symbol = meta.Symbol
		built.Name = meta.Name
		if meta.Decimals > 0 {
			built.Decimals = meta.Decimals
		}
	} else {
		c.logger.Debug("token metadata unavailable",
			zap.String("mint", leg.mint), zap.Error(err))
		built.Symbol = shortMint(leg.mint)
	}

	price, err := c.pricer.Price(priceCtx, leg.mint)
	if err == nil {
		built.USDValue = KnownUSD(leg.uiAmount * price)
	} else {
		c.logger.Debug("leg valuation unavailable",
			zap.String("mint", leg.mint), zap.Error(err))
	}

	return built
}

// shortMint abbreviates a mint for display when no symbol is known.
func shortMint(mint string) string {
	if len(mint) >= 8 {
		return mint[:4] + "..." + mint[len(mint)-4:]
	}
	return "TOKEN"
}
