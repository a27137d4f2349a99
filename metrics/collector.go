package metrics

import (
	"sync/atomic"
	"time"
)

// Result is the outcome of one self-play episode for the learning side.
type Result int

const (
	Win Result = iota
	Loss
	Draw
)

type BatchMetric struct {
	StartTime time.Time
	Duration  time.Duration
	Episodes  int
	Wins      int
	Losses    int
	Draws     int
}

// WinRate is the share of episodes won by the learning side.
func (m BatchMetric) WinRate() float64 {
	if m.Episodes == 0 {
		return 0
	}
	return float64(m.Wins) / float64(m.Episodes)
}

type Collector interface {
	Start()
	AddEpisode(result Result)
	Complete() BatchMetric
}

type collector struct {
	startTime time.Time
	episodes  atomic.Int32
	wins      atomic.Int32
	losses    atomic.Int32
	draws     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.episodes.Store(0)
	m.wins.Store(0)
	m.losses.Store(0)
	m.draws.Store(0)
}

func (m *collector) AddEpisode(result Result) {
	m.episodes.Add(1)
	switch result {
	case Win:
		m.wins.Add(1)
	case Loss:
		m.losses.Add(1)
	case Draw:
		m.draws.Add(1)
	}
}

func (m *collector) Complete() BatchMetric {
	return BatchMetric{
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
		Episodes:  int(m.episodes.Load()),
		Wins:      int(m.wins.Load()),
		Losses:    int(m.losses.Load()),
		Draws:     int(m.draws.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                   {}
func (m *dummyCollector) AddEpisode(result Result) {}
func (m *dummyCollector) Complete() BatchMetric    { return BatchMetric{} }
