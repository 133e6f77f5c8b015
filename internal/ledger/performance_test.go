package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

func seedWallet(t *testing.T, ldg *Ledger) {
	t.Helper()
	ctx := context.Background()

	history := []struct {
		event     *classifier.SwapEvent
		direction classifier.Direction
	}{
		{swap("p1", leg(solMint, "SOL", 0.1, classifier.KnownUSD(20)), leg(tokenXMint, "X", 100, classifier.KnownUSD(20))), classifier.DirectionBuy},
		{swap("p2", leg(usdcMint, "USDC", 30, classifier.KnownUSD(30)), leg(tokenYMint, "Y", 60, classifier.KnownUSD(30))), classifier.DirectionBuy},
		{swap("p3", leg(tokenXMint, "X", 40, classifier.KnownUSD(12)), leg(usdcMint, "USDC", 12, classifier.KnownUSD(12))), classifier.DirectionSell},
	}
	for _, h := range history {
		_, err := ldg.Apply(ctx, h.event, h.direction)
		require.NoError(t, err)
	}
}

func TestPerformanceSnapshotIsIsolated(t *testing.T) {
	ldg, store, _ := newTestLedger(t)
	seedWallet(t, ldg)

	snapshot, ok := ldg.Performance(testWallet)
	require.True(t, ok)

	// Mutating the snapshot must not leak back into live state.
	for _, pos := range snapshot.Positions {
		pos.Balance = -1
		pos.TotalInvested = -1
	}
	snapshot.TotalRealizedPnL = 12345

	live, _ := store.Get(testWallet)
	for _, pos := range live.Positions {
		assert.Greater(t, pos.Balance, 0.0)
		assert.GreaterOrEqual(t, pos.TotalInvested, 0.0)
	}
	assert.NotEqual(t, 12345.0, live.TotalRealizedPnL)
}

func TestPerformanceUnknownWallet(t *testing.T) {
	ldg, _, _ := newTestLedger(t)

	_, ok := ldg.Performance("unknown-wallet")
	assert.False(t, ok)
	assert.Nil(t, ldg.TopPositions("unknown-wallet", 5))
	assert.Nil(t, ldg.RecentTrades("unknown-wallet", 5))
}

func TestTopPositionsOrdering(t *testing.T) {
	ldg, _, static := newTestLedger(t)
	ctx := context.Background()

	// X revalues at a gain after a partial sell; Y's output leg was
	// never priced, so its valuation stays unknown.
	static.SetPrice(tokenXMint, 0.5)

	buyX := swap("b1",
		leg(solMint, "SOL", 0.1, classifier.KnownUSD(20)),
		leg(tokenXMint, "X", 100, classifier.KnownUSD(20)))
	_, err := ldg.Apply(ctx, buyX, classifier.DirectionBuy)
	require.NoError(t, err)

	buyY := swap("b2",
		leg(usdcMint, "USDC", 30, classifier.KnownUSD(30)),
		leg(tokenYMint, "Y", 60, classifier.UnknownUSD()))
	_, err = ldg.Apply(ctx, buyY, classifier.DirectionBuy)
	require.NoError(t, err)

	sellX := swap("s1",
		leg(tokenXMint, "X", 10, classifier.KnownUSD(5)),
		leg(usdcMint, "USDC", 5, classifier.KnownUSD(5)))
	_, err = ldg.Apply(ctx, sellX, classifier.DirectionSell)
	require.NoError(t, err)

	top := ldg.TopPositions(testWallet, 10)
	require.Len(t, top, 2)
	assert.Equal(t, tokenXMint, top[0].Mint, "known valuation sorts first")
	assert.Equal(t, tokenYMint, top[1].Mint)
	assert.True(t, top[0].UnrealizedPnL.Known)
	assert.InDelta(t, 27.0, top[0].UnrealizedPnL.Value, 1e-9) // 90 * 0.5 - 18
	assert.False(t, top[1].UnrealizedPnL.Known)

	limited := ldg.TopPositions(testWallet, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, tokenXMint, limited[0].Mint)
}

func TestRecentTradesMostRecentFirst(t *testing.T) {
	ldg, _, _ := newTestLedger(t)
	seedWallet(t, ldg)

	recent := ldg.RecentTrades(testWallet, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "p3", recent[0].Signature)
	assert.Equal(t, "p2", recent[1].Signature)

	all := ldg.RecentTrades(testWallet, 0)
	assert.Len(t, all, 3)
}

func TestRecomputeWinRateAndROI(t *testing.T) {
	ldg, store, _ := newTestLedger(t)
	ctx := context.Background()

	// One winning close, one losing close, nothing open.
	history := []struct {
		event     *classifier.SwapEvent
		direction classifier.Direction
	}{
		{swap("r1", leg(usdcMint, "USDC", 10, classifier.KnownUSD(10)), leg(tokenXMint, "X", 10, classifier.KnownUSD(10))), classifier.DirectionBuy},
		{swap("r2", leg(tokenXMint, "X", 10, classifier.KnownUSD(14)), leg(usdcMint, "USDC", 14, classifier.KnownUSD(14))), classifier.DirectionSell},
		{swap("r3", leg(usdcMint, "USDC", 10, classifier.KnownUSD(10)), leg(tokenYMint, "Y", 10, classifier.KnownUSD(10))), classifier.DirectionBuy},
		{swap("r4", leg(tokenYMint, "Y", 10, classifier.KnownUSD(8)), leg(usdcMint, "USDC", 8, classifier.KnownUSD(8))), classifier.DirectionSell},
	}
	for _, h := range history {
		_, err := ldg.Apply(ctx, h.event, h.direction)
		require.NoError(t, err)
	}

	wp, _ := store.Get(testWallet)
	assert.Equal(t, 1, wp.WinningTrades)
	assert.Equal(t, 1, wp.LosingTrades)
	assert.InDelta(t, 50.0, wp.WinRate, 1e-9)
	assert.InDelta(t, 2.0, wp.TotalRealizedPnL, 1e-9) // +4 - 2
	assert.InDelta(t, 2.0, wp.TotalPnL, 1e-9)
	// No open cost remains, so the capital base is |realized| alone.
	assert.InDelta(t, 100.0, wp.ROI, 1e-9)
}

func TestRecomputeWithNoDecidedTrades(t *testing.T) {
	ldg, store, _ := newTestLedger(t)
	ctx := context.Background()

	buy := swap("b1",
		leg(solMint, "SOL", 0.1, classifier.KnownUSD(20)),
		leg(tokenXMint, "X", 100, classifier.KnownUSD(20)))
	_, err := ldg.Apply(ctx, buy, classifier.DirectionBuy)
	require.NoError(t, err)

	wp, _ := store.Get(testWallet)
	assert.Zero(t, wp.WinRate)
	assert.Equal(t, 1, wp.TotalTrades)
}
