package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://api.mainnet-beta.solana.com"],
		"websocket_url": "wss://api.mainnet-beta.solana.com",
		"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultNoiseFloor, cfg.NoiseFloor)
	assert.Equal(t, DefaultDustThreshold, cfg.DustThreshold)
	assert.Equal(t, DefaultMinPnLThreshold, cfg.MinPnLThreshold)
	assert.Equal(t, DefaultPriceTTL, cfg.PriceTTLSeconds)
	assert.Equal(t, DefaultPriceTimeout, cfg.PriceTimeoutMs)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultBaseMints, cfg.BaseMints)
	assert.Equal(t, "exports", cfg.ExportDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://rpc.example.com"],
		"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"],
		"base_mints": ["So11111111111111111111111111111111111111112"],
		"noise_floor": 0.001,
		"dust_threshold": 0.01,
		"export_dir": "out"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.001, cfg.NoiseFloor)
	assert.Equal(t, 0.01, cfg.DustThreshold)
	assert.Equal(t, []string{"So11111111111111111111111111111111111111112"}, cfg.BaseMints)
	assert.Equal(t, "out", cfg.ExportDir)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no wallets",
			content: `{"rpc_list": ["https://rpc.example.com"], "wallets": []}`,
		},
		{
			name:    "no rpc",
			content: `{"rpc_list": [], "wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"]}`,
		},
		{
			name: "bad websocket scheme",
			content: `{
				"rpc_list": ["https://rpc.example.com"],
				"websocket_url": "https://not-a-websocket.example.com",
				"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"]
			}`,
		},
		{
			name: "bad rpc scheme",
			content: `{
				"rpc_list": ["ftp://rpc.example.com"],
				"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"]
			}`,
		},
		{
			name: "negative noise floor",
			content: `{
				"rpc_list": ["https://rpc.example.com"],
				"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"],
				"noise_floor": -1
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WALLET_TRACKER_WALLETS", "walletOne, walletTwo")

	path := writeConfig(t, `{
		"rpc_list": ["https://rpc.example.com"],
		"wallets": ["9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"walletOne", "walletTwo"}, cfg.Wallets)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,"))
	assert.Nil(t, splitAndTrim(" , "))
}
