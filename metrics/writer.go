package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// BatchRow is the parquet layout of a BatchRecord.
type BatchRow struct {
	Batch       int32   `parquet:"batch"`
	StartUnixMs int64   `parquet:"start_unix_ms"`
	DurationMs  int64   `parquet:"duration_ms"`
	Episodes    int32   `parquet:"episodes"`
	Wins        int32   `parquet:"wins"`
	Losses      int32   `parquet:"losses"`
	Draws       int32   `parquet:"draws"`
	Epsilon     float64 `parquet:"epsilon"`
	TableSize   int64   `parquet:"table_size"`
}

func toRow(r BatchRecord) BatchRow {
	return BatchRow{
		Batch:       int32(r.Batch),
		StartUnixMs: r.StartTime.UnixMilli(),
		DurationMs:  int64(r.Duration * 1000),
		Episodes:    int32(r.Episodes),
		Wins:        int32(r.Wins),
		Losses:      int32(r.Losses),
		Draws:       int32(r.Draws),
		Epsilon:     r.Epsilon,
		TableSize:   int64(r.TableSize),
	}
}

// HistoryWriter appends batch records to parquet files under dir. Each file
// is written in dir/tmp and renamed into dir once it holds flushEvery rows
// or the writer is closed.
type HistoryWriter struct {
	mu         sync.Mutex
	outDir     string
	tmpDir     string
	flushEvery int

	tmpPath string
	outPath string
	file    *os.File
	writer  *parquet.GenericWriter[BatchRow]
	rows    int
}

func NewHistoryWriter(outDir string, flushEvery int) (*HistoryWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if flushEvery <= 0 {
		flushEvery = 1
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}
	return &HistoryWriter{
		outDir:     absOut,
		tmpDir:     tmpDir,
		flushEvery: flushEvery,
	}, nil
}

func (w *HistoryWriter) open() error {
	name := fmt.Sprintf("batches_%d.parquet", time.Now().UnixNano())
	w.tmpPath = filepath.Join(w.tmpDir, name)
	w.outPath = filepath.Join(w.outDir, name)

	f, err := os.OpenFile(w.tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open tmp parquet: %w", err)
	}
	w.file = f
	w.writer = parquet.NewGenericWriter[BatchRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.writer.SetKeyValueMetadata("schema", "batch_row_v1")
	w.rows = 0
	return nil
}

// Write appends one record and returns the path of a finalized file, if
// this write completed one.
func (w *HistoryWriter) Write(record BatchRecord) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		if err := w.open(); err != nil {
			return "", err
		}
	}
	if _, err := w.writer.Write([]BatchRow{toRow(record)}); err != nil {
		return "", fmt.Errorf("write batch row: %w", err)
	}
	w.rows++
	if w.rows < w.flushEvery {
		return "", nil
	}
	return w.finalize()
}

// Close finalizes the current file. It returns an empty path if nothing was
// buffered.
func (w *HistoryWriter) Close() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finalize()
}

func (w *HistoryWriter) finalize() (string, error) {
	if w.writer == nil && w.file == nil {
		return "", nil
	}

	rows := w.rows
	var closeErr error
	if w.writer != nil {
		closeErr = w.writer.Close()
		w.writer = nil
	}
	var fileErr error
	if w.file != nil {
		_ = w.file.Sync()
		fileErr = w.file.Close()
		w.file = nil
	}
	w.rows = 0
	if closeErr != nil {
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}

	if rows == 0 {
		_ = os.Remove(w.tmpPath)
		return "", nil
	}
	if err := os.Rename(w.tmpPath, w.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return w.outPath, nil
}
