package learner

import (
	"math"
	"strconv"
)

// Table maps (state key, action) pairs to value estimates. Unseen pairs are
// worth 0. It is not safe for concurrent use; Learner serializes access.
type Table struct {
	values map[string]float64
}

func NewTable() *Table {
	return &Table{values: make(map[string]float64)}
}

// Key flattens a state-action pair into its persisted form "<state>-<action>".
func Key(state string, action int) string {
	return state + "-" + strconv.Itoa(action)
}

func (t *Table) Get(state string, action int) float64 {
	return t.values[Key(state, action)]
}

func (t *Table) Set(state string, action int, value float64) {
	t.values[Key(state, action)] = value
}

// BestValue is the max estimate over the legal actions, counting unseen
// actions as 0. With no legal actions it is 0.
func (t *Table) BestValue(state string, legal []int) float64 {
	if len(legal) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, a := range legal {
		best = math.Max(best, t.Get(state, a))
	}
	return best
}

func (t *Table) Len() int {
	return len(t.values)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	values := make(map[string]float64, len(t.values))
	for k, v := range t.values {
		values[k] = v
	}
	return &Table{values: values}
}
