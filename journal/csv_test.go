package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVAppendsTradesWithHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	exit := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("T1", 1, exit)))
	require.NoError(t, j.Close())

	// Reopening must not duplicate the header.
	j, err = NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(sampleTrade("T2", 2, exit.Add(time.Hour))))
	require.NoError(t, j.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "T1", rows[1][0])
	assert.Equal(t, "T2", rows[2][0])
	assert.Equal(t, "long", rows[1][2])
}

func TestCSVQueriesUnsupported(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	_, err = j.GetTrade("T1")
	assert.Error(t, err)
	_, err = j.ListTradesClosedBetween(time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}
