package ledger

import (
	"sort"
	"sync"
	"time"
)

// WalletPerformance aggregates one tracked wallet's ledger state. It is
// mutated only by the Ledger; everyone else sees copies.
type WalletPerformance struct {
	mu sync.RWMutex

	WalletAddress string `json:"wallet_address"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalRealizedPnL   float64 `json:"total_realized_pnl"`
	TotalUnrealizedPnL float64 `json:"total_unrealized_pnl"`
	TotalPnL           float64 `json:"total_pnl"`
	ROI                float64 `json:"roi"`

	Positions map[string]*Position `json:"positions"`
	Trades    []Trade              `json:"trades"` // chronological, append-only

	CreatedAt time.Time `json:"created_at"`
}

// Store owns WalletPerformance records. It is injected into the Ledger
// rather than living as package state, so tests and multiple tracker
// instances each get their own.
type Store interface {
	// Get returns the wallet's record, if one exists.
	Get(wallet string) (*WalletPerformance, bool)

	// GetOrCreate returns the wallet's record, creating it lazily and
	// idempotently on first use.
	GetOrCreate(wallet string) *WalletPerformance

	// Wallets returns all tracked wallet addresses, sorted.
	Wallets() []string
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	wallets map[string]*WalletPerformance
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets: make(map[string]*WalletPerformance),
	}
}

func (s *MemoryStore) Get(wallet string) (*WalletPerformance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wp, ok := s.wallets[wallet]
	return wp, ok
}

func (s *MemoryStore) GetOrCreate(wallet string) *WalletPerformance {
	s.mu.RLock()
	wp, ok := s.wallets[wallet]
	s.mu.RUnlock()
	if ok {
		return wp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if wp, ok := s.wallets[wallet]; ok {
		return wp
	}
	wp = &WalletPerformance{
		WalletAddress: wallet,
		Positions:     make(map[string]*Position),
		CreatedAt:     time.Now(),
	}
	s.wallets[wallet] = wp
	return wp
}

func (s *MemoryStore) Wallets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wallets := make([]string, 0, len(s.wallets))
	for w := range s.wallets {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets
}
