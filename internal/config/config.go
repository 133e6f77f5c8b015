// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	RPCList      []string `mapstructure:"rpc_list"`
	WebSocketURL string   `mapstructure:"websocket_url"`
	Wallets      []string `mapstructure:"wallets"`
	BaseMints    []string `mapstructure:"base_mints"`

	// Ledger thresholds.
	NoiseFloor      float64 `mapstructure:"noise_floor"`
	DustThreshold   float64 `mapstructure:"dust_threshold"`
	MinPnLThreshold float64 `mapstructure:"min_pnl_threshold"`

	// Pricer behavior.
	PriceTTLSeconds int `mapstructure:"price_ttl_seconds"`
	PriceTimeoutMs  int `mapstructure:"price_timeout_ms"`

	ExportDir    string `mapstructure:"export_dir"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	Retries      int    `mapstructure:"retries"`
}

const (
	DefaultNoiseFloor      = 0.0001
	DefaultDustThreshold   = 0.001
	DefaultMinPnLThreshold = 0.01
	DefaultPriceTTL        = 60
	DefaultPriceTimeout    = 5000
	DefaultRetries         = 3
)

// DefaultBaseMints are the quote assets positions are priced against:
// wrapped SOL and the two major stables.
var DefaultBaseMints = []string{
	"So11111111111111111111111111111111111111112",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"noise_floor":       DefaultNoiseFloor,
		"dust_threshold":    DefaultDustThreshold,
		"min_pnl_threshold": DefaultMinPnLThreshold,
		"price_ttl_seconds": DefaultPriceTTL,
		"price_timeout_ms":  DefaultPriceTimeout,
		"retries":           DefaultRetries,
		"base_mints":        DefaultBaseMints,
		"export_dir":        "exports",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.Wallets) == 0 {
		return errors.New("no wallets configured")
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	if len(cfg.BaseMints) == 0 {
		return errors.New("base_mints is empty")
	}
	if cfg.WebSocketURL != "" {
		if err := validateURLWithCache(cfg.WebSocketURL, "ws"); err != nil {
			return errors.New("invalid WebSocket URL protocol")
		}
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.NoiseFloor <= 0 {
		return errors.New("invalid noise_floor")
	}
	if cfg.DustThreshold <= 0 {
		return errors.New("invalid dust_threshold")
	}
	if cfg.MinPnLThreshold < 0 {
		return errors.New("invalid min_pnl_threshold")
	}
	if cfg.PriceTTLSeconds <= 0 {
		return errors.New("invalid price_ttl_seconds")
	}
	if cfg.PriceTimeoutMs <= 0 {
		return errors.New("invalid price_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("WALLET_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		if rpcs := splitAndTrim(envRPCList); len(rpcs) > 0 {
			cfg.RPCList = rpcs
		}
	}

	envWallets := v.GetString("WALLETS")
	if envWallets != "" {
		if wallets := splitAndTrim(envWallets); len(wallets) > 0 {
			cfg.Wallets = wallets
		}
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var clean []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			clean = append(clean, t)
		}
	}
	return clean
}
