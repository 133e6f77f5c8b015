package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/pricer"
	"go.uber.org/zap"
)

// Ledger applies classified swaps to per-wallet position state and
// maintains weighted-average cost basis and realized P&L.
//
// Callers must serialize Apply calls per wallet (one writer at a time)
// and guarantee at-most-once delivery per signature; the tracker does
// both.
type Ledger struct {
	store     Store
	pricer    pricer.Pricer
	dust      float64
	minPnL    float64
	priceWait time.Duration
	logger    *zap.Logger
}

type LedgerConfig struct {
	Store         Store
	Pricer        pricer.Pricer
	DustThreshold float64 // balance below which a position counts as closed
	MinPnL        float64 // |realized P&L| above which a sell counts as win/loss
	PriceWait     time.Duration
	Logger        *zap.Logger
}

func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Pricer == nil {
		return nil, fmt.Errorf("pricer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	dust := cfg.DustThreshold
	if dust <= 0 {
		dust = 0.001
	}
	minPnL := cfg.MinPnL
	if minPnL <= 0 {
		minPnL = 0.01
	}
	priceWait := cfg.PriceWait
	if priceWait <= 0 {
		priceWait = 5 * time.Second
	}

	return &Ledger{
		store:     cfg.Store,
		pricer:    cfg.Pricer,
		dust:      dust,
		minPnL:    minPnL,
		priceWait: priceWait,
		logger:    cfg.Logger.Named("ledger"),
	}, nil
}

// Store exposes the injected store for read-side collaborators.
func (l *Ledger) Store() Store {
	return l.store
}

// Apply mutates the event's wallet according to the resolved direction
// and returns the trades recorded. An ignored or dropped event returns
// no trades and no error.
func (l *Ledger) Apply(ctx context.Context, event *classifier.SwapEvent, direction classifier.Direction) ([]Trade, error) {
	if event == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}

	wp := l.store.GetOrCreate(event.Wallet)
	wp.mu.Lock()
	defer wp.mu.Unlock()

	var trades []Trade
	switch direction {
	case classifier.DirectionBuy:
		trades = append(trades, l.applyBuy(ctx, wp, event, event.OutputLeg, event.InputLeg.USDValue))
	case classifier.DirectionSell:
		if trade, ok := l.applySell(ctx, wp, event, event.InputLeg.UIAmount, event.OutputLeg.USDValue, true); ok {
			trades = append(trades, trade)
		}
	case classifier.DirectionTokenToToken:
		trades = l.applyTokenToToken(ctx, wp, event)
	case classifier.DirectionIgnored:
		l.logger.Debug("base-to-base conversion ignored",
			zap.String("signature", event.Signature),
			zap.String("wallet", event.Wallet))
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown direction: %s", direction)
	}

	recompute(wp)
	return trades, nil
}

// applyBuy opens or grows the position for leg's mint. cost is the
// counter-value given up, 0 when unknown. A buy is always recordable.
func (l *Ledger) applyBuy(ctx context.Context, wp *WalletPerformance, event *classifier.SwapEvent, leg classifier.TokenLeg, cost classifier.USDAmount) Trade {
	amount := leg.UIAmount
	costUSD := cost.Or(0)

	pos, ok := wp.Positions[leg.Mint]
	if !ok {
		pos = &Position{
			Mint:     leg.Mint,
			Symbol:   leg.Symbol,
			Name:     leg.Name,
			OpenedAt: event.Timestamp,
		}
		wp.Positions[leg.Mint] = pos
	}

	pos.TotalInvested += costUSD
	pos.Balance += amount
	if pos.Balance > 0 {
		pos.AvgBuyPrice = pos.TotalInvested / pos.Balance
	} else {
		pos.AvgBuyPrice = 0
	}
	pos.UpdatedAt = event.Timestamp

	// The output leg's own valuation doubles as the freshest spot price.
	pos.Revalue(legSpotPrice(leg))

	trade := Trade{
		Signature:     event.Signature,
		Timestamp:     event.Timestamp,
		Wallet:        wp.WalletAddress,
		Type:          TradeBuy,
		TokenMint:     leg.Mint,
		TokenSymbol:   leg.Symbol,
		TokenAmount:   amount,
		PricePerToken: perUnit(cost, amount),
		USDValue:      cost,
		Venue:         event.Venue,
	}

	wp.Trades = append(wp.Trades, trade)
	pos.Trades = append(pos.Trades, trade)
	wp.TotalTrades++

	l.logger.Info("📈 Buy applied",
		zap.String("wallet", wp.WalletAddress),
		zap.String("token", leg.Symbol),
		zap.Float64("amount", amount),
		zap.Float64("cost_usd", costUSD),
		zap.Float64("avg_buy_price", pos.AvgBuyPrice))

	return trade
}

// applySell disposes of sellAmount from the position for the event's
// input mint. received is the USD obtained for the full leg. With
// clampTracked set, the amount is clamped to the tracked balance and
// the received USD scaled proportionally (the plain SELL path);
// token-to-token disposals assume the full amount is tracked.
//
// Returns false when no open position exists: the acquisition was never
// observed, so there is no cost basis to realize against and the sale
// is dropped rather than fabricated.
func (l *Ledger) applySell(ctx context.Context, wp *WalletPerformance, event *classifier.SwapEvent, sellAmount float64, received classifier.USDAmount, clampTracked bool) (Trade, bool) {
	leg := event.InputLeg
	pos, ok := wp.Positions[leg.Mint]
	if !ok || pos.Balance <= 0 {
		l.logger.Warn("⚠️ Untracked sell dropped",
			zap.String("wallet", wp.WalletAddress),
			zap.String("token", leg.Symbol),
			zap.String("mint", leg.Mint),
			zap.Float64("amount", sellAmount),
			zap.String("signature", event.Signature))
		return Trade{}, false
	}

	trackedAmount := sellAmount
	partial := false
	if clampTracked && sellAmount > pos.Balance {
		trackedAmount = pos.Balance
		partial = true
		l.logger.Warn("⚠️ Partial-tracking sell",
			zap.String("wallet", wp.WalletAddress),
			zap.String("token", leg.Symbol),
			zap.Float64("sold", sellAmount),
			zap.Float64("tracked", trackedAmount),
			zap.String("signature", event.Signature))
	}

	costBasis := pos.AvgBuyPrice * trackedAmount

	// USD received is scaled down to the tracked fraction of the sale.
	proportionalReceived := classifier.UnknownUSD()
	realizedPnL := classifier.UnknownUSD()
	realizedPct := classifier.UnknownUSD()
	if received.Known && sellAmount > 0 {
		receivedUSD := trackedAmount / sellAmount * received.Value
		pnl := receivedUSD - costBasis
		proportionalReceived = classifier.KnownUSD(receivedUSD)
		realizedPnL = classifier.KnownUSD(pnl)
		if costBasis > 0 {
			realizedPct = classifier.KnownUSD(pnl / costBasis * 100)
		} else {
			realizedPct = classifier.KnownUSD(0)
		}

		wp.TotalRealizedPnL += pnl
		if math.Abs(pnl) > l.minPnL {
			if pnl > 0 {
				wp.WinningTrades++
			} else {
				wp.LosingTrades++
			}
		}
	} else {
		l.logger.Warn("Sell received value unknown, realized P&L not computed",
			zap.String("wallet", wp.WalletAddress),
			zap.String("token", leg.Symbol),
			zap.String("signature", event.Signature))
	}

	// Shrink the cost basis proportionally so the average buy price of
	// the remainder is preserved.
	balanceBefore := pos.Balance
	pos.Balance -= trackedAmount
	if pos.Balance < 0 {
		pos.Balance = 0
	}
	if balanceBefore > 0 {
		fraction := trackedAmount / balanceBefore
		if fraction > 1 {
			fraction = 1
		}
		pos.TotalInvested -= pos.TotalInvested * fraction
	}
	pos.UpdatedAt = event.Timestamp

	if pos.Balance <= l.dust {
		delete(wp.Positions, leg.Mint)
		l.logger.Info("Position closed",
			zap.String("wallet", wp.WalletAddress),
			zap.String("token", leg.Symbol),
			zap.String("mint", leg.Mint))
	} else {
		pos.Revalue(l.spotPrice(ctx, leg.Mint))
	}

	trade := Trade{
		Signature:          event.Signature,
		Timestamp:          event.Timestamp,
		Wallet:             wp.WalletAddress,
		Type:               TradeSell,
		TokenMint:          leg.Mint,
		TokenSymbol:        leg.Symbol,
		TokenAmount:        trackedAmount,
		PricePerToken:      perUnit(proportionalReceived, trackedAmount),
		USDValue:           proportionalReceived,
		RealizedPnL:        realizedPnL,
		RealizedPnLPercent: realizedPct,
		PartialTracking:    partial,
		Venue:              event.Venue,
	}

	wp.Trades = append(wp.Trades, trade)
	if kept, ok := wp.Positions[leg.Mint]; ok {
		kept.Trades = append(kept.Trades, trade)
	}
	wp.TotalTrades++

	l.logger.Info("📉 Sell applied",
		zap.String("wallet", wp.WalletAddress),
		zap.String("token", leg.Symbol),
		zap.Float64("amount", trackedAmount),
		zap.Float64("cost_basis", costBasis),
		zap.Float64("realized_pnl", realizedPnL.Or(0)),
		zap.Bool("pnl_known", realizedPnL.Known),
		zap.Bool("partial_tracking", partial))

	return trade, true
}

// applyTokenToToken treats the swap as a linked disposal and acquisition
// within one ledger transaction. The disposal takes the full input
// amount at face value (there is no base-asset exchange to cross-check a
// partial-tracking clamp against); the acquisition is valued at the
// output leg, falling back to the input leg's value when the output
// price is unknown.
func (l *Ledger) applyTokenToToken(ctx context.Context, wp *WalletPerformance, event *classifier.SwapEvent) []Trade {
	var trades []Trade

	received := event.OutputLeg.USDValue
	if !received.Known {
		received = event.InputLeg.USDValue
	}

	if trade, ok := l.applySell(ctx, wp, event, event.InputLeg.UIAmount, received, false); ok {
		trades = append(trades, trade)
	}

	buyValue := event.OutputLeg.USDValue
	if !buyValue.Known {
		buyValue = event.InputLeg.USDValue
	}
	trades = append(trades, l.applyBuy(ctx, wp, event, event.OutputLeg, buyValue))

	return trades
}

// spotPrice asks the pricer for a current per-unit price with a bounded
// wait. Failure degrades to unknown, never blocks ledger application.
func (l *Ledger) spotPrice(ctx context.Context, mint string) classifier.USDAmount {
	priceCtx, cancel := context.WithTimeout(ctx, l.priceWait)
	defer cancel()

	price, err := l.pricer.Price(priceCtx, mint)
	if err != nil {
		return classifier.UnknownUSD()
	}
	return classifier.KnownUSD(price)
}

// legSpotPrice derives a per-unit price from a leg's own valuation.
func legSpotPrice(leg classifier.TokenLeg) classifier.USDAmount {
	if !leg.USDValue.Known || leg.UIAmount <= 0 {
		return classifier.UnknownUSD()
	}
	return classifier.KnownUSD(leg.USDValue.Value / leg.UIAmount)
}

// perUnit divides a total USD value by an amount, keeping unknown
// distinct from zero.
func perUnit(total classifier.USDAmount, amount float64) classifier.USDAmount {
	if !total.Known || amount <= 0 {
		return classifier.UnknownUSD()
	}
	return classifier.KnownUSD(total.Value / amount)
}
