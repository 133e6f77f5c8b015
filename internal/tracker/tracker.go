// internal/tracker/tracker.go
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/classifier"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/ledger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/logger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/stream"
)

// AppliedFunc is called after every swap that produced trades, outside
// any ledger lock. Used to hook reporting in.
type AppliedFunc func(wallet string, trades []ledger.Trade)

// Tracker wires the pipeline together: raw deltas from the source are
// classified, resolved against the base-asset set and applied to the
// ledger. One worker goroutine owns each wallet, so ledger mutations for
// a wallet are serialized while distinct wallets proceed in parallel.
type Tracker struct {
	source     stream.Source
	classifier *classifier.Classifier
	baseSet    classifier.BaseSet
	ledger     *ledger.Ledger
	logger     *logger.Logger
	onApplied  AppliedFunc

	queueSize int

	mu     sync.Mutex
	queues map[string]chan *classifier.RawDeltas
}

type Config struct {
	Source     stream.Source
	Classifier *classifier.Classifier
	BaseSet    classifier.BaseSet
	Ledger     *ledger.Ledger
	Logger     *logger.Logger
	OnApplied  AppliedFunc
	QueueSize  int
}

func New(cfg Config) (*Tracker, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if len(cfg.BaseSet) == 0 {
		return nil, fmt.Errorf("base set cannot be empty")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Tracker{
		source:     cfg.Source,
		classifier: cfg.Classifier,
		baseSet:    cfg.BaseSet,
		ledger:     cfg.Ledger,
		logger:     cfg.Logger,
		onApplied:  cfg.OnApplied,
		queueSize:  queueSize,
		queues:     make(map[string]chan *classifier.RawDeltas),
	}, nil
}

// Run processes events until the context is cancelled and the source
// drains. It returns the first fatal error from the source or workers.
func (t *Tracker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return t.source.Run(ctx)
	})

	workers := &errgroup.Group{}
	g.Go(func() error {
		t.dispatch(ctx, workers)
		return nil
	})

	err := g.Wait()
	workersErr := workers.Wait()
	if err != nil {
		return err
	}
	return workersErr
}

// dispatch routes raw records onto per-wallet ordered queues, starting a
// worker the first time a wallet is seen.
func (t *Tracker) dispatch(ctx context.Context, workers *errgroup.Group) {
	for raw := range t.source.Events() {
		queue := t.walletQueue(raw.Wallet, workers)
		select {
		case queue <- raw:
		case <-ctx.Done():
			t.closeQueues()
			return
		}
	}
	t.closeQueues()
}

func (t *Tracker) walletQueue(wallet string, workers *errgroup.Group) chan *classifier.RawDeltas {
	t.mu.Lock()
	defer t.mu.Unlock()

	if queue, ok := t.queues[wallet]; ok {
		return queue
	}

	queue := make(chan *classifier.RawDeltas, t.queueSize)
	t.queues[wallet] = queue
	workers.Go(func() error {
		t.runWorker(wallet, queue)
		return nil
	})
	t.logger.Info("👛 Wallet worker started", zap.String("wallet", wallet))
	return queue
}

func (t *Tracker) closeQueues() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, queue := range t.queues {
		close(queue)
	}
	t.queues = make(map[string]chan *classifier.RawDeltas)
}

// runWorker serializes all ledger mutations for one wallet. The seen set
// enforces at-most-once application per signature; the source only
// promises at-least-once delivery.
func (t *Tracker) runWorker(wallet string, queue <-chan *classifier.RawDeltas) {
	walletLog := t.logger.WithWallet(wallet)
	seen := make(map[string]struct{})

	for raw := range queue {
		if _, dup := seen[raw.Signature]; dup {
			walletLog.Debug("Duplicate signature skipped",
				zap.String("signature", raw.Signature))
			continue
		}
		seen[raw.Signature] = struct{}{}

		t.process(context.Background(), raw)
	}
	walletLog.Info("Wallet worker stopped", zap.Int("processed", len(seen)))
}

func (t *Tracker) process(ctx context.Context, raw *classifier.RawDeltas) {
	txLog := t.logger.WithTransaction(raw.Signature).
		With(zap.String("wallet", raw.Wallet))

	event, err := t.classifier.Classify(ctx, raw)
	if err != nil {
		if errors.Is(err, classifier.ErrNoSwap) {
			return
		}
		txLog.Warn("Classification failed", zap.Error(err))
		return
	}

	direction := t.baseSet.Resolve(event)
	if direction == classifier.DirectionIgnored {
		txLog.Debug("Base-to-base conversion ignored")
		return
	}

	trades, err := t.ledger.Apply(ctx, event, direction)
	if err != nil {
		txLog.Error("Ledger apply failed", zap.Error(err))
		return
	}

	if t.onApplied != nil && len(trades) > 0 {
		t.onApplied(event.Wallet, trades)
	}
}
