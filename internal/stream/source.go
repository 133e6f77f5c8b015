// internal/stream/source.go
package stream

import (
	"context"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

// Source delivers raw per-transaction balance-delta records for the
// watched wallets, each tagged with its signature and wallet address,
// in arrival order. Delivery is at-least-once; the tracker deduplicates
// by signature.
type Source interface {
	// Events is the stream of raw records. Closed when Run returns.
	Events() <-chan *classifier.RawDeltas

	// Run blocks, feeding Events until ctx is cancelled.
	Run(ctx context.Context) error
}
