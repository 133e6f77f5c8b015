package logger

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSafeCSVWriterWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	header := []string{"signature", "type", "amount"}

	writer, err := NewSafeCSVWriter(path, header, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, writer.WriteRecord([]string{"sig-1", "buy", "100"}))
	require.NoError(t, writer.Close())

	// Reopening in append mode must not duplicate the header.
	writer, err = NewSafeCSVWriter(path, header, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, writer.WriteRecord([]string{"sig-2", "sell", "100"}))
	require.NoError(t, writer.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, "sig-1", records[1][0])
	assert.Equal(t, "sig-2", records[2][0])
}

func TestSafeCSVWriterFlushAndStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	writer, err := NewSafeCSVWriter(path, nil, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.WriteRecord([]string{"a", "b"}))
	require.NoError(t, writer.Flush())

	records, flushes := writer.GetStats()
	assert.Equal(t, uint64(1), records)
	assert.Equal(t, uint64(1), flushes)
}
