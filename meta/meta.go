// meta/meta.go
package meta

import "time"

// InitialEpisodes defines the number of self-play episodes used to bootstrap
// a missing or near-empty table.
const InitialEpisodes = 10000

// BatchEpisodes defines the number of episodes per background refinement batch.
const BatchEpisodes = 500

// RefineInterval defines the wall-clock period between refinement batch starts.
const RefineInterval = 30 * time.Second

// Backoff defines the pause after a failed refinement batch.
const Backoff = 5 * time.Second

// MinTableEntries defines the table size below which initial training runs.
const MinTableEntries = 100

// TablePath defines where the value table is persisted.
const TablePath = "q_table.json"
