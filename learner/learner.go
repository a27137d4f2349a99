package learner

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

type Option func(l *Learner)

// Learner owns the value table, the exploration rate and the RNG shared by
// self-play training and live inference. mu guards all three; every method
// holds it only for the duration of a single action or update so that live
// requests interleave with a running training batch.
type Learner struct {
	mu       sync.RWMutex
	table    *Table
	epsilon  float64
	rng      *rand.Rand
	alpha    float64
	gamma    float64
	schedule Schedule
}

func WithAlpha(alpha float64) Option {
	return func(l *Learner) {
		if alpha > 0 {
			l.alpha = alpha
		}
	}
}

func WithGamma(gamma float64) Option {
	return func(l *Learner) {
		if gamma >= 0 {
			l.gamma = gamma
		}
	}
}

func WithSchedule(schedule Schedule) Option {
	return func(l *Learner) {
		l.schedule = schedule
		l.epsilon = schedule.Start
	}
}

// WithSeed makes every random choice reproducible. Seed 0 keeps the
// time-based default.
func WithSeed(seed uint64) Option {
	return func(l *Learner) {
		if seed != 0 {
			l.rng = rand.New(rand.NewSource(seed))
		}
	}
}

func WithTable(table *Table) Option {
	return func(l *Learner) {
		if table != nil {
			l.table = table
		}
	}
}

func New(options ...Option) *Learner {
	schedule := DefaultSchedule()
	l := &Learner{ // Default values
		table:    NewTable(),
		epsilon:  schedule.Start,
		rng:      rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		alpha:    DefaultAlpha,
		gamma:    DefaultGamma,
		schedule: schedule,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *Learner) Epsilon() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.epsilon
}

// DecayEpsilon applies one schedule step and returns the new rate.
func (l *Learner) DecayEpsilon() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epsilon = l.schedule.Next(l.epsilon)
	return l.epsilon
}

// Size is the number of stored state-action estimates.
func (l *Learner) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Len()
}

func (l *Learner) Value(state string, action int) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Get(state, action)
}

// Roll draws a uniform number in [0, 1).
func (l *Learner) Roll() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// RandomMove picks uniformly among moves. It returns false if moves is empty.
func (l *Learner) RandomMove(moves []int) (int, bool) {
	if len(moves) == 0 {
		return -1, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return moves[l.rng.Intn(len(moves))], true
}

// Snapshot returns a copy of the table that later updates do not touch.
func (l *Learner) Snapshot() *Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Clone()
}

// Save persists a snapshot of the table. The lock is released before any
// file I/O starts.
func (l *Learner) Save(path string) (int, error) {
	snapshot := l.Snapshot()
	if err := snapshot.Save(path); err != nil {
		return 0, err
	}
	return snapshot.Len(), nil
}

// Load replaces the table with the contents of path, or with an empty table
// if the file is missing or malformed. It returns the loaded entry count.
func (l *Learner) Load(path string) int {
	table := LoadTable(path)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.table = table
	return table.Len()
}
