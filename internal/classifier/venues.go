// =============================
// File: internal/classifier/venues.go
// =============================
package classifier

import (
	"math"
)

// Well-known DEX program IDs.
const (
	RaydiumAMMProgramID = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	PumpFunProgramID    = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	PumpSwapProgramID   = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"

	wrappedSOLMint  = "So11111111111111111111111111111111111111112"
	lamportsPerSOL  = 1_000_000_000
	wrappedDecimals = 9
)

// rawLeg is a pre-valuation swap leg candidate.
type rawLeg struct {
	mint     string
	decimals uint8
	uiAmount float64 // absolute magnitude
}

// legExtractor turns one transaction's balance deltas into input/output
// leg candidates. Each supported venue gets its own variant; the delta
// extractor is the fallback for unrecognized programs.
type legExtractor interface {
	Name() string
	Extract(raw *RawDeltas, noiseFloor float64) (in, out rawLeg, ok bool)
}

// extractorFor resolves the venue variant for a program ID.
func extractorFor(programID string) legExtractor {
	switch programID {
	case PumpFunProgramID:
		return pumpFunExtractor{}
	case RaydiumAMMProgramID:
		return deltaExtractor{name: "Raydium"}
	case PumpSwapProgramID:
		return deltaExtractor{name: "PumpSwap"}
	default:
		return deltaExtractor{name: "generic"}
	}
}

// deltaExtractor derives legs purely from balance movement: the largest
// outflow becomes the input leg, the largest inflow the output leg.
// Ties go to the first-seen change.
type deltaExtractor struct {
	name string
}

func (e deltaExtractor) Name() string { return e.name }

func (e deltaExtractor) Extract(raw *RawDeltas, noiseFloor float64) (rawLeg, rawLeg, bool) {
	changes := candidateChanges(raw, noiseFloor)

	var in, out rawLeg
	var haveIn, haveOut bool
	for _, c := range changes {
		delta := c.Delta()
		magnitude := math.Abs(delta)
		if delta < 0 {
			if !haveIn || magnitude > in.uiAmount {
				in = rawLeg{mint: c.Mint, decimals: c.Decimals, uiAmount: magnitude}
				haveIn = true
			}
		} else {
			if !haveOut || magnitude > out.uiAmount {
				out = rawLeg{mint: c.Mint, decimals: c.Decimals, uiAmount: magnitude}
				haveOut = true
			}
		}
	}

	if !haveIn || !haveOut || in.mint == out.mint {
		return rawLeg{}, rawLeg{}, false
	}
	return in, out, true
}

// pumpFunExtractor handles Pump.fun bonding-curve trades, which always
// pair a single token against native SOL. It requires exactly one
// non-SOL movement and pairs it with the lamport delta.
type pumpFunExtractor struct{}

func (pumpFunExtractor) Name() string { return "Pump.fun" }

func (pumpFunExtractor) Extract(raw *RawDeltas, noiseFloor float64) (rawLeg, rawLeg, bool) {
	var token rawLeg
	var tokenDelta float64
	found := 0
	wrappedMoved := false
	for _, c := range raw.TokenChanges {
		delta := c.Delta()
		if math.Abs(delta) <= noiseFloor {
			continue
		}
		if c.Mint == wrappedSOLMint {
			wrappedMoved = true
			continue
		}
		token = rawLeg{mint: c.Mint, decimals: c.Decimals, uiAmount: math.Abs(delta)}
		tokenDelta = delta
		found++
	}
	if found != 1 || wrappedMoved {
		// Not the token-against-native shape this venue produces (the
		// SOL side may have moved through a wrapped-SOL token account);
		// generic delta extraction pairs the legs correctly.
		return deltaExtractor{name: "Pump.fun"}.Extract(raw, noiseFloor)
	}

	solDelta := float64(raw.LamportsDelta) / lamportsPerSOL
	if math.Abs(solDelta) <= noiseFloor {
		// The SOL side moved through a wrapped-SOL token account rather
		// than the native balance; the generic path pairs it correctly.
		return deltaExtractor{name: "Pump.fun"}.Extract(raw, noiseFloor)
	}
	sol := rawLeg{mint: wrappedSOLMint, decimals: wrappedDecimals, uiAmount: math.Abs(solDelta)}

	// Opposite signs are required for the native pairing.
	if tokenDelta > 0 && solDelta < 0 {
		return sol, token, true
	}
	if tokenDelta < 0 && solDelta > 0 {
		return token, sol, true
	}
	return deltaExtractor{name: "Pump.fun"}.Extract(raw, noiseFloor)
}

// candidateChanges merges token balance changes with the native lamport
// delta (as wrapped SOL) and drops anything at or below the noise floor.
func candidateChanges(raw *RawDeltas, noiseFloor float64) []TokenBalanceChange {
	changes := make([]TokenBalanceChange, 0, len(raw.TokenChanges)+1)
	seenSOL := false
	for _, c := range raw.TokenChanges {
		if math.Abs(c.Delta()) <= noiseFloor {
			continue
		}
		if c.Mint == wrappedSOLMint {
			seenSOL = true
		}
		changes = append(changes, c)
	}

	// The native balance only counts when no wrapped-SOL account moved,
	// otherwise the same flow would be double counted.
	if !seenSOL && raw.LamportsDelta != 0 {
		solDelta := float64(raw.LamportsDelta) / lamportsPerSOL
		if math.Abs(solDelta) > noiseFloor {
			changes = append(changes, TokenBalanceChange{
				Mint:     wrappedSOLMint,
				Decimals: wrappedDecimals,
				PostUI:   solDelta,
			})
		}
	}
	return changes
}
