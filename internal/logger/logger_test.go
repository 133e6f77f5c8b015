package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScopedHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.WithWallet("wallet-a").Info("position updated")
	log.WithOperation("startup").Info("ready")
	log.WithTransaction("sig-1").Debug("classified")
	log.WithComponent("report").Info("flushed")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "wallet-a", entries[0].ContextMap()["wallet"])

	opCtx := entries[1].ContextMap()
	assert.Equal(t, "startup", opCtx["operation"])
	assert.NotEmpty(t, opCtx["correlation_id"])

	assert.Equal(t, "sig-1", entries[2].ContextMap()["signature"])
	assert.Equal(t, "report", entries[3].ContextMap()["component"])
}

func TestOperationCorrelationIDsAreUnique(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := Wrap(zap.New(core))

	log.WithOperation("first").Info("a")
	log.WithOperation("second").Info("b")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotEqual(t,
		entries[0].ContextMap()["correlation_id"],
		entries[1].ContextMap()["correlation_id"])
}
