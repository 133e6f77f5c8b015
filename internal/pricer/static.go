// internal/pricer/static.go
package pricer

import (
	"context"
	"sync"
)

// Static is a deterministic in-memory Pricer. It backs tests and replay
// runs where live prices would make results non-reproducible.
type Static struct {
	mu     sync.RWMutex
	metas  map[string]Meta
	prices map[string]float64
}

func NewStatic() *Static {
	return &Static{
		metas:  make(map[string]Meta),
		prices: make(map[string]float64),
	}
}

func (s *Static) SetMeta(mint string, meta Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metas[mint] = meta
}

func (s *Static) SetPrice(mint string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[mint] = price
}

// RemovePrice makes a mint's price unavailable again.
func (s *Static) RemovePrice(mint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prices, mint)
}

func (s *Static) TokenMeta(_ context.Context, mint string) (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if meta, ok := s.metas[mint]; ok {
		return meta, nil
	}
	if meta, ok := knownTokens[mint]; ok {
		return meta, nil
	}
	return Meta{}, ErrUnavailable
}

func (s *Static) Price(_ context.Context, mint string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if price, ok := s.prices[mint]; ok {
		return price, nil
	}
	return 0, ErrUnavailable
}
