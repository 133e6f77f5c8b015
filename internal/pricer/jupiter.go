// internal/pricer/jupiter.go
package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	jupiterPriceEndpoint = "https://lite-api.jup.ag/price/v2"
	jupiterTokenEndpoint = "https://lite-api.jup.ag/tokens/v1/token"

	metaTTL = 5 * time.Minute
)

// JupiterPricer resolves token metadata and USD prices from the Jupiter
// public APIs, with TTL caching on both.
type JupiterPricer struct {
	httpClient *http.Client
	logger     *zap.Logger
	prices     *gocache.Cache
	metas      *gocache.Cache
	retries    uint
}

type Options struct {
	PriceTTL time.Duration
	Timeout  time.Duration
	Retries  int
}

type jupiterPriceResponse struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"data"`
}

type jupiterTokenResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

func NewJupiterPricer(opts Options, logger *zap.Logger) *JupiterPricer {
	priceTTL := opts.PriceTTL
	if priceTTL <= 0 {
		priceTTL = 60 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 3
	}

	return &JupiterPricer{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("pricer"),
		prices:     gocache.New(priceTTL, 2*priceTTL),
		metas:      gocache.New(metaTTL, 2*metaTTL),
		retries:    uint(retries),
	}
}

// TokenMeta returns symbol, name and decimals for a mint. Known base
// tokens resolve without a network round trip.
func (p *JupiterPricer) TokenMeta(ctx context.Context, mint string) (Meta, error) {
	if cached, ok := p.metas.Get(mint); ok {
		return cached.(Meta), nil
	}
	if meta, ok := knownTokens[mint]; ok {
		p.metas.Set(mint, meta, gocache.DefaultExpiration)
		return meta, nil
	}

	operation := func() (Meta, error) {
		return p.fetchMeta(ctx, mint)
	}
	meta, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(p.retries))
	if err != nil {
		p.logger.Debug("token metadata unavailable",
			zap.String("mint", mint), zap.Error(err))
		return Meta{}, ErrUnavailable
	}

	p.metas.Set(mint, meta, gocache.DefaultExpiration)
	return meta, nil
}

// Price returns the current USD price per whole unit of the mint.
func (p *JupiterPricer) Price(ctx context.Context, mint string) (float64, error) {
	if cached, ok := p.prices.Get(mint); ok {
		return cached.(float64), nil
	}

	operation := func() (float64, error) {
		return p.fetchPrice(ctx, mint)
	}
	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(p.retries))
	if err != nil {
		p.logger.Debug("price unavailable",
			zap.String("mint", mint), zap.Error(err))
		return 0, ErrUnavailable
	}

	p.prices.Set(mint, price, gocache.DefaultExpiration)
	return price, nil
}

func (p *JupiterPricer) fetchMeta(ctx context.Context, mint string) (Meta, error) {
	url := fmt.Sprintf("%s/%s", jupiterTokenEndpoint, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Meta{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Meta{}, backoff.Permanent(fmt.Errorf("unknown mint: %s", mint))
	}
	if resp.StatusCode != http.StatusOK {
		return Meta{}, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	var token jupiterTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Meta{}, fmt.Errorf("failed to decode API response: %w", err)
	}

	return Meta{
		Symbol:   token.Symbol,
		Name:     token.Name,
		Decimals: token.Decimals,
	}, nil
}

func (p *JupiterPricer) fetchPrice(ctx context.Context, mint string) (float64, error) {
	url := fmt.Sprintf("%s?ids=%s", jupiterPriceEndpoint, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	var priceResp jupiterPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return 0, fmt.Errorf("failed to decode API response: %w", err)
	}

	entry, ok := priceResp.Data[mint]
	if !ok || entry.Price == "" {
		return 0, backoff.Permanent(fmt.Errorf("no price for mint: %s", mint))
	}

	var price float64
	if _, err := fmt.Sscanf(entry.Price, "%f", &price); err != nil {
		return 0, backoff.Permanent(fmt.Errorf("failed to parse price %q: %w", entry.Price, err))
	}
	if price <= 0 {
		return 0, backoff.Permanent(fmt.Errorf("non-positive price for mint: %s", mint))
	}
	return price, nil
}

// knownTokens avoids API lookups for the mints every tracked wallet
// touches constantly.
var knownTokens = map[string]Meta{
	"So11111111111111111111111111111111111111112": {Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9},
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {Symbol: "USDT", Name: "USDT", Decimals: 6},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Symbol: "BONK", Name: "Bonk", Decimals: 5},
}
