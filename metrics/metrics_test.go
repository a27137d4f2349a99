package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts results", func(t *testing.T) {
		c := NewCollector()
		c.Start()
		c.AddEpisode(Win)
		c.AddEpisode(Win)
		c.AddEpisode(Loss)
		c.AddEpisode(Draw)

		m := c.Complete()

		require.Equal(t, 4, m.Episodes)
		require.Equal(t, 2, m.Wins)
		require.Equal(t, 1, m.Losses)
		require.Equal(t, 1, m.Draws)
		require.InDelta(t, 0.5, m.WinRate(), 1e-12)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start()
		c.AddEpisode(Win)
		c.Start()

		require.Equal(t, 0, c.Complete().Episodes, "A new batch starts from zero")
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start()
		c.AddEpisode(Win)

		require.Equal(t, BatchMetric{}, c.Complete())
		require.Equal(t, 0.0, c.Complete().WinRate(), "Empty batch has no win rate")
	})
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)
	_, ok := h.Last()
	require.False(t, ok, "Empty history has no last record")

	h.Add(BatchRecord{Batch: 1})
	h.Add(BatchRecord{Batch: 2})
	h.Add(BatchRecord{Batch: 3})

	records := h.Records()
	require.Len(t, records, 2, "History should keep only the newest records")
	require.Equal(t, 2, records[0].Batch)
	last, ok := h.Last()
	require.True(t, ok)
	require.Equal(t, 3, last.Batch)
}

func TestHistoryWriter(t *testing.T) {
	t.Run("flushes a file after the configured rows", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewHistoryWriter(dir, 2)
		require.NoError(t, err)
		start := time.UnixMilli(1_700_000_000_000)

		path, err := w.Write(NewBatchRecord(1, BatchMetric{StartTime: start, Duration: time.Second, Episodes: 10, Wins: 6}, 0.5, 100))
		require.NoError(t, err)
		require.Empty(t, path, "First row should stay buffered")

		path, err = w.Write(NewBatchRecord(2, BatchMetric{StartTime: start, Episodes: 10, Draws: 10}, 0.4, 120))
		require.NoError(t, err)
		require.NotEmpty(t, path, "Second row should finalize the file")
		require.Equal(t, dir, filepath.Dir(path))

		rows, err := parquet.ReadFile[BatchRow](path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, int32(1), rows[0].Batch)
		require.Equal(t, int64(1000), rows[0].DurationMs)
		require.Equal(t, start.UnixMilli(), rows[0].StartUnixMs)
		require.Equal(t, int32(6), rows[0].Wins)
		require.Equal(t, int64(120), rows[1].TableSize)
		require.InDelta(t, 0.4, rows[1].Epsilon, 1e-12)
	})

	t.Run("close without rows leaves nothing behind", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewHistoryWriter(dir, 5)
		require.NoError(t, err)

		path, err := w.Close()

		require.NoError(t, err)
		require.Empty(t, path)
		tmp, err := os.ReadDir(filepath.Join(dir, "tmp"))
		require.NoError(t, err)
		require.Empty(t, tmp, "No temporary file should remain")
	})

	t.Run("close finalizes a partial file", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewHistoryWriter(dir, 5)
		require.NoError(t, err)
		_, err = w.Write(BatchRecord{Batch: 7})
		require.NoError(t, err)

		path, err := w.Close()

		require.NoError(t, err)
		rows, err := parquet.ReadFile[BatchRow](path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("requires a directory", func(t *testing.T) {
		_, err := NewHistoryWriter("", 1)
		require.Error(t, err)
	})
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	records := []BatchRecord{
		{Batch: 1, Epsilon: 0.6, WinRate: 0.4, TableSize: 1000},
		{Batch: 2, Epsilon: 0.36, WinRate: 0.55, TableSize: 1400},
	}

	require.NoError(t, RenderChart(&buf, records))

	html := buf.String()
	require.Contains(t, html, "Exploration and win rate", "Page should include the rate chart")
	require.Contains(t, html, "Value table entries", "Page should include the size chart")
}
