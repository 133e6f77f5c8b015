package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseSetResolve(t *testing.T) {
	baseSet := NewBaseSet([]string{solMint, usdcMint})

	tests := []struct {
		name string
		in   string
		out  string
		want Direction
	}{
		{"base in, token out is a buy", solMint, memeMint, DirectionBuy},
		{"token in, base out is a sell", memeMint, usdcMint, DirectionSell},
		{"token to token", memeMint, otherMint, DirectionTokenToToken},
		{"base to base is ignored", solMint, usdcMint, DirectionIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &SwapEvent{
				InputLeg:  TokenLeg{Mint: tt.in},
				OutputLeg: TokenLeg{Mint: tt.out},
			}
			assert.Equal(t, tt.want, baseSet.Resolve(event))
		})
	}
}

func TestBaseSetContains(t *testing.T) {
	baseSet := NewBaseSet([]string{solMint})
	assert.True(t, baseSet.Contains(solMint))
	assert.False(t, baseSet.Contains(memeMint))
}
