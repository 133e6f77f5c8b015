// internal/stream/solana.go
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
)

// SolanaSource subscribes to transaction logs mentioning each watched
// wallet and converts confirmed transactions into RawDeltas records.
type SolanaSource struct {
	rpcClient *rpc.Client
	wsURL     string
	wallets   []solana.PublicKey
	logger    *zap.Logger
	out       chan *classifier.RawDeltas
}

type SourceConfig struct {
	RPCURL  string
	WSURL   string
	Wallets []string
	Logger  *zap.Logger
}

func NewSolanaSource(cfg SourceConfig) (*SolanaSource, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL cannot be empty")
	}
	if cfg.WSURL == "" {
		return nil, fmt.Errorf("WebSocket URL cannot be empty")
	}
	if len(cfg.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets to watch")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	wallets := make([]solana.PublicKey, 0, len(cfg.Wallets))
	for _, w := range cfg.Wallets {
		pk, err := solana.PublicKeyFromBase58(w)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet address %q: %w", w, err)
		}
		wallets = append(wallets, pk)
	}

	return &SolanaSource{
		rpcClient: rpc.New(cfg.RPCURL),
		wsURL:     cfg.WSURL,
		wallets:   wallets,
		logger:    cfg.Logger.Named("stream"),
		out:       make(chan *classifier.RawDeltas, 256),
	}, nil
}

// Events returns the raw record stream.
func (s *SolanaSource) Events() <-chan *classifier.RawDeltas {
	return s.out
}

// Run watches every wallet until ctx is cancelled, then closes Events.
func (s *SolanaSource) Run(ctx context.Context) error {
	defer close(s.out)

	g, ctx := errgroup.WithContext(ctx)
	for _, wallet := range s.wallets {
		wallet := wallet
		g.Go(func() error {
			return s.watchWallet(ctx, wallet)
		})
	}
	return g.Wait()
}

// watchWallet maintains one subscription session per wallet, reconnecting
// with exponential backoff on transport failures.
func (s *SolanaSource) watchWallet(ctx context.Context, wallet solana.PublicKey) error {
	logger := s.logger.With(zap.String("wallet", wallet.String()))
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 30 * time.Second

	for {
		err := s.runSession(ctx, wallet, logger)
		if ctx.Err() != nil {
			logger.Info("Wallet watcher stopped")
			return nil
		}

		wait := policy.NextBackOff()
		logger.Warn("Subscription session ended, reconnecting",
			zap.Error(err),
			zap.Duration("retry_in", wait))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// runSession holds one WebSocket subscription open and forwards every
// confirmed transaction mentioning the wallet.
func (s *SolanaSource) runSession(ctx context.Context, wallet solana.PublicKey, logger *zap.Logger) error {
	wsClient, err := ws.Connect(ctx, s.wsURL)
	if err != nil {
		return fmt.Errorf("failed to connect WebSocket: %w", err)
	}
	defer wsClient.Close()

	sub, err := wsClient.LogsSubscribeMentions(wallet, rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to subscribe to logs: %w", err)
	}
	defer sub.Unsubscribe()

	logger.Info("🔭 Watching wallet")

	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("subscription receive failed: %w", err)
		}
		if result.Value.Err != nil {
			// Failed transactions move no balances.
			continue
		}

		raw, err := s.fetchDeltas(ctx, wallet, result.Value.Signature)
		if err != nil {
			logger.Warn("Failed to resolve transaction",
				zap.String("signature", result.Value.Signature.String()),
				zap.Error(err))
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case s.out <- raw:
		}
	}
}

// fetchDeltas pulls the confirmed transaction and extracts balance
// deltas, retrying briefly because confirmed transactions can lag the
// log notification.
func (s *SolanaSource) fetchDeltas(ctx context.Context, wallet solana.PublicKey, signature solana.Signature) (*classifier.RawDeltas, error) {
	maxVersion := uint64(0)
	operation := func() (*rpc.GetTransactionResult, error) {
		result, err := s.rpcClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("transaction %s not yet available", signature)
		}
		return result, nil
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(5))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	return extractRawDeltas(wallet, signature, result)
}
