package ledger

import (
	"math"
	"sort"
)

// recompute re-derives a wallet's aggregate metrics from current state.
// It is a full re-derivation rather than an incremental delta, so replay
// from empty state always converges to the same numbers. Caller holds
// wp.mu.
func recompute(wp *WalletPerformance) {
	var totalUnrealized, totalInvested float64
	for _, pos := range wp.Positions {
		if pos.UnrealizedPnL.Known {
			totalUnrealized += pos.UnrealizedPnL.Value
		}
		totalInvested += pos.TotalInvested
	}

	wp.TotalUnrealizedPnL = totalUnrealized
	wp.TotalPnL = wp.TotalRealizedPnL + wp.TotalUnrealizedPnL

	decided := wp.WinningTrades + wp.LosingTrades
	if decided > 0 {
		wp.WinRate = float64(wp.WinningTrades) / float64(decided) * 100
	} else {
		wp.WinRate = 0
	}

	// Capital base is open cost plus the magnitude of realized P&L.
	// Kept as the documented formula; see DESIGN.md.
	denominator := totalInvested + math.Abs(wp.TotalRealizedPnL)
	if denominator > 0 {
		wp.ROI = wp.TotalPnL / denominator * 100
	} else {
		wp.ROI = 0
	}
}

// Performance returns a read-only snapshot of a wallet's aggregate
// state, or false when the wallet was never seen.
func (l *Ledger) Performance(wallet string) (*WalletPerformance, bool) {
	wp, ok := l.store.Get(wallet)
	if !ok {
		return nil, false
	}

	wp.mu.RLock()
	defer wp.mu.RUnlock()

	snapshot := &WalletPerformance{
		WalletAddress:      wp.WalletAddress,
		TotalTrades:        wp.TotalTrades,
		WinningTrades:      wp.WinningTrades,
		LosingTrades:       wp.LosingTrades,
		WinRate:            wp.WinRate,
		TotalRealizedPnL:   wp.TotalRealizedPnL,
		TotalUnrealizedPnL: wp.TotalUnrealizedPnL,
		TotalPnL:           wp.TotalPnL,
		ROI:                wp.ROI,
		Positions:          make(map[string]*Position, len(wp.Positions)),
		Trades:             make([]Trade, len(wp.Trades)),
		CreatedAt:          wp.CreatedAt,
	}
	for mint, pos := range wp.Positions {
		snapshot.Positions[mint] = pos.clone()
	}
	copy(snapshot.Trades, wp.Trades)
	return snapshot, true
}

// TopPositions returns up to n open positions ordered by unrealized P&L
// descending. Positions with unknown valuation sort last.
func (l *Ledger) TopPositions(wallet string, n int) []*Position {
	wp, ok := l.store.Get(wallet)
	if !ok {
		return nil
	}

	wp.mu.RLock()
	positions := make([]*Position, 0, len(wp.Positions))
	for _, pos := range wp.Positions {
		positions = append(positions, pos.clone())
	}
	wp.mu.RUnlock()

	sort.Slice(positions, func(i, j int) bool {
		pi, pj := positions[i], positions[j]
		if pi.UnrealizedPnL.Known != pj.UnrealizedPnL.Known {
			return pi.UnrealizedPnL.Known
		}
		if pi.UnrealizedPnL.Value != pj.UnrealizedPnL.Value {
			return pi.UnrealizedPnL.Value > pj.UnrealizedPnL.Value
		}
		return pi.Mint < pj.Mint
	})

	if n > 0 && len(positions) > n {
		positions = positions[:n]
	}
	return positions
}

// RecentTrades returns up to n trades, most recent first.
func (l *Ledger) RecentTrades(wallet string, n int) []Trade {
	wp, ok := l.store.Get(wallet)
	if !ok {
		return nil
	}

	wp.mu.RLock()
	defer wp.mu.RUnlock()

	count := len(wp.Trades)
	if n > 0 && n < count {
		count = n
	}

	trades := make([]Trade, count)
	for i := 0; i < count; i++ {
		trades[i] = wp.Trades[len(wp.Trades)-1-i]
	}
	return trades
}
