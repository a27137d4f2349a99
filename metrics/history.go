package metrics

import (
	"sync"
	"time"
)

// BatchRecord describes one completed refinement batch.
type BatchRecord struct {
	Batch     int       `json:"batch"`
	StartTime time.Time `json:"start_time"`
	Duration  float64   `json:"duration_seconds"`
	Episodes  int       `json:"episodes"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Draws     int       `json:"draws"`
	WinRate   float64   `json:"win_rate"`
	Epsilon   float64   `json:"epsilon"`
	TableSize int       `json:"table_size"`
}

func NewBatchRecord(batch int, metric BatchMetric, epsilon float64, tableSize int) BatchRecord {
	return BatchRecord{
		Batch:     batch,
		StartTime: metric.StartTime,
		Duration:  metric.Duration.Seconds(),
		Episodes:  metric.Episodes,
		Wins:      metric.Wins,
		Losses:    metric.Losses,
		Draws:     metric.Draws,
		WinRate:   metric.WinRate(),
		Epsilon:   epsilon,
		TableSize: tableSize,
	}
}

// History keeps the most recent batch records in memory.
type History struct {
	mu      sync.RWMutex
	limit   int
	records []BatchRecord
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 1
	}
	return &History{limit: limit}
}

func (h *History) Add(record BatchRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	if len(h.records) > h.limit {
		h.records = append([]BatchRecord(nil), h.records[len(h.records)-h.limit:]...)
	}
}

func (h *History) Records() []BatchRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]BatchRecord(nil), h.records...)
}

func (h *History) Last() (BatchRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return BatchRecord{}, false
	}
	return h.records[len(h.records)-1], true
}
