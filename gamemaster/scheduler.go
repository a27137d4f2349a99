package gamemaster

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"tictactoe/engine"
	"tictactoe/learner"
	"tictactoe/meta"
	"tictactoe/metrics"

	"github.com/rs/zerolog/log"
)

type SchedulerOption func(s *Scheduler)

// Scheduler keeps refining the table in the background: a batch of
// self-play episodes, a checkpoint, then a wait until interval has passed
// since the batch started.
type Scheduler struct {
	learner       *learner.Learner
	engine        *engine.Engine
	tablePath     string
	batchEpisodes int
	interval      time.Duration
	backoff       time.Duration
	history       *metrics.History
	writer        *metrics.HistoryWriter
	hooks         []func(metrics.BatchRecord)
	batches       atomic.Int64
}

func WithBatchEpisodes(episodes int) SchedulerOption {
	return func(s *Scheduler) {
		if episodes > 0 {
			s.batchEpisodes = episodes
		}
	}
}

func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval >= 0 {
			s.interval = interval
		}
	}
}

func WithBackoff(backoff time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

func WithTablePath(path string) SchedulerOption {
	return func(s *Scheduler) {
		if path != "" {
			s.tablePath = path
		}
	}
}

func WithHistory(history *metrics.History) SchedulerOption {
	return func(s *Scheduler) {
		s.history = history
	}
}

// WithHistoryWriter persists every batch record. The scheduler does not
// close the writer.
func WithHistoryWriter(writer *metrics.HistoryWriter) SchedulerOption {
	return func(s *Scheduler) {
		s.writer = writer
	}
}

// WithBatchHook registers a callback run after every successful batch.
func WithBatchHook(hook func(metrics.BatchRecord)) SchedulerOption {
	return func(s *Scheduler) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// NewScheduler returns a scheduler for l. The engine must train l and
// should collect metrics (engine.WithMetrics) for the batch records to
// carry results.
func NewScheduler(l *learner.Learner, e *engine.Engine, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{ // Default values
		learner:       l,
		engine:        e,
		tablePath:     meta.TablePath,
		batchEpisodes: meta.BatchEpisodes,
		interval:      meta.RefineInterval,
		backoff:       meta.Backoff,
		history:       metrics.NewHistory(1),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Batches returns the number of completed batches.
func (s *Scheduler) Batches() int {
	return int(s.batches.Load())
}

// Run refines until ctx is cancelled. A failed batch is logged and retried
// after the backoff. The table is saved once more on every way out.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.finalSave()

	for ctx.Err() == nil {
		start := time.Now()
		wait := s.interval
		if err := s.runBatch(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Err(err).Msg("refinement batch interrupted by shutdown")
				return
			}
			log.Error().Err(err).Dur("backoff", s.backoff).Msg("refinement batch failed")
			wait = s.backoff
		} else {
			wait = max(0, s.interval-time.Since(start))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runBatch(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch panicked: %v", r)
		}
	}()

	batch := s.Batches() + 1
	metric, err := s.engine.Train(ctx, s.batchEpisodes)
	if err != nil {
		return fmt.Errorf("batch %d: %w", batch, err)
	}
	saved, err := s.learner.Save(s.tablePath)
	if err != nil {
		return fmt.Errorf("batch %d: save table: %w", batch, err)
	}
	s.batches.Add(1)

	record := metrics.NewBatchRecord(batch, metric, s.learner.Epsilon(), saved)
	s.history.Add(record)
	if s.writer != nil {
		if path, err := s.writer.Write(record); err != nil {
			log.Warn().Err(err).Int("batch", batch).Msg("failed to write batch history")
		} else if path != "" {
			log.Debug().Str("path", path).Msg("batch history flushed")
		}
	}
	log.Info().
		Int("batch", batch).
		Dur("duration", metric.Duration).
		Float64("win_rate", metric.WinRate()).
		Int("entries", saved).
		Msg("refinement batch complete")

	for _, hook := range s.hooks {
		hook(record)
	}
	return nil
}

func (s *Scheduler) finalSave() {
	saved, err := s.learner.Save(s.tablePath)
	if err != nil {
		log.Error().Err(err).Str("path", s.tablePath).Msg("final save failed")
		return
	}
	log.Info().Int("entries", saved).Str("path", s.tablePath).Msg("final save complete")
}
