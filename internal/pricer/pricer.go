// internal/pricer/pricer.go
package pricer

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a mint's metadata or price cannot be
// resolved. Callers must treat this as "unknown", never as zero.
var ErrUnavailable = errors.New("pricer: data unavailable")

// Meta describes a token mint.
type Meta struct {
	Symbol   string
	Name     string
	Decimals uint8
}

// Pricer resolves token metadata and current USD prices. Implementations
// must not block past their configured timeout and must return
// ErrUnavailable for unknown mints instead of failing hard.
type Pricer interface {
	TokenMeta(ctx context.Context, mint string) (Meta, error)
	Price(ctx context.Context, mint string) (float64, error)
}
