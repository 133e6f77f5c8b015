// =============================
// File: internal/classifier/direction.go
// =============================
package classifier

// Direction is the trade category of a swap relative to the configured
// base (quote) assets.
type Direction string

const (
	DirectionBuy          Direction = "buy"
	DirectionSell         Direction = "sell"
	DirectionTokenToToken Direction = "token_to_token"
	// DirectionIgnored marks base-to-base conversions, which carry no
	// position signal.
	DirectionIgnored Direction = "ignored"
)

// BaseSet is the configured set of quote-asset mints.
type BaseSet map[string]struct{}

// NewBaseSet builds a BaseSet from configured mints.
func NewBaseSet(mints []string) BaseSet {
	set := make(BaseSet, len(mints))
	for _, m := range mints {
		set[m] = struct{}{}
	}
	return set
}

// Contains reports whether mint is a base asset.
func (s BaseSet) Contains(mint string) bool {
	_, ok := s[mint]
	return ok
}

// Resolve determines the trade direction of a swap. Pure function.
func (s BaseSet) Resolve(event *SwapEvent) Direction {
	inBase := s.Contains(event.InputLeg.Mint)
	outBase := s.Contains(event.OutputLeg.Mint)

	switch {
	case inBase && outBase:
		return DirectionIgnored
	case inBase && !outBase:
		return DirectionBuy
	case !inBase && outBase:
		return DirectionSell
	default:
		return DirectionTokenToToken
	}
}
