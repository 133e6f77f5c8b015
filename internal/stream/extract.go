// internal/stream/extract.go
package stream

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

// knownDEXPrograms maps DEX program IDs to a display name. Used only to
// tag RawDeltas with the venue that produced the swap; classification
// falls back to generic delta extraction for anything not listed.
var knownDEXPrograms = map[string]struct{}{
	classifier.RaydiumAMMProgramID: {},
	classifier.PumpFunProgramID:    {},
	classifier.PumpSwapProgramID:   {},
}

// extractRawDeltas converts a fetched transaction into the classifier's
// input record for one tracked wallet.
func extractRawDeltas(wallet solana.PublicKey, signature solana.Signature, result *rpc.GetTransactionResult) (*classifier.RawDeltas, error) {
	if result == nil || result.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no meta", signature)
	}
	if result.Meta.Err != nil {
		return nil, fmt.Errorf("transaction %s failed on chain", signature)
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", signature, err)
	}

	blockTime := time.Now()
	if result.BlockTime != nil {
		blockTime = result.BlockTime.Time()
	}

	raw := &classifier.RawDeltas{
		Signature:    signature.String(),
		Wallet:       wallet.String(),
		BlockTime:    blockTime,
		ProgramID:    detectProgram(tx),
		TokenChanges: tokenChanges(wallet, result.Meta),
	}
	raw.LamportsDelta = lamportsDelta(wallet, tx, result.Meta)

	return raw, nil
}

// tokenChanges folds pre/post token balances owned by the wallet into
// one change per mint. A wallet can hold several token accounts for the
// same mint; their balances are summed.
func tokenChanges(wallet solana.PublicKey, meta *rpc.TransactionMeta) []classifier.TokenBalanceChange {
	type balances struct {
		pre      float64
		post     float64
		decimals uint8
	}
	byMint := make(map[string]*balances)
	var order []string

	accumulate := func(list []rpc.TokenBalance, post bool) {
		for _, tb := range list {
			if tb.Owner == nil || !tb.Owner.Equals(wallet) || tb.UiTokenAmount == nil {
				continue
			}
			mint := tb.Mint.String()
			entry, ok := byMint[mint]
			if !ok {
				entry = &balances{decimals: tb.UiTokenAmount.Decimals}
				byMint[mint] = entry
				order = append(order, mint)
			}
			amount := 0.0
			if tb.UiTokenAmount.UiAmount != nil {
				amount = *tb.UiTokenAmount.UiAmount
			}
			if post {
				entry.post += amount
			} else {
				entry.pre += amount
			}
		}
	}

	accumulate(meta.PreTokenBalances, false)
	accumulate(meta.PostTokenBalances, true)

	changes := make([]classifier.TokenBalanceChange, 0, len(order))
	for _, mint := range order {
		entry := byMint[mint]
		changes = append(changes, classifier.TokenBalanceChange{
			Mint:     mint,
			Decimals: entry.decimals,
			PreUI:    entry.pre,
			PostUI:   entry.post,
		})
	}
	return changes
}

// lamportsDelta returns the wallet's native balance change with the
// transaction fee added back when the wallet paid it, so fees never
// masquerade as trade flow.
func lamportsDelta(wallet solana.PublicKey, tx *solana.Transaction, meta *rpc.TransactionMeta) int64 {
	index := -1
	for i, key := range tx.Message.AccountKeys {
		if key.Equals(wallet) {
			index = i
			break
		}
	}
	if index < 0 || index >= len(meta.PreBalances) || index >= len(meta.PostBalances) {
		return 0
	}

	delta := int64(meta.PostBalances[index]) - int64(meta.PreBalances[index])

	// The fee payer is always the first account in the message.
	if index == 0 {
		delta += int64(meta.Fee)
	}
	return delta
}

// detectProgram returns the first known DEX program invoked by the
// transaction, or empty for unrecognized venues.
func detectProgram(tx *solana.Transaction) string {
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(tx.Message.AccountKeys) {
			continue
		}
		programID := tx.Message.AccountKeys[ix.ProgramIDIndex].String()
		if _, ok := knownDEXPrograms[programID]; ok {
			return programID
		}
	}
	return ""
}
