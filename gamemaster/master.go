package gamemaster

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tictactoe/engine"
	"tictactoe/game"
	"tictactoe/learner"
	"tictactoe/learner/agent"
	"tictactoe/meta"
	"tictactoe/metrics"

	"github.com/rs/zerolog/log"
)

// historyLimit bounds the batch records kept in memory for the stats API.
const historyLimit = 500

// Stats is a point-in-time view of the learner and the background job.
type Stats struct {
	Initialized     bool                 `json:"initialized"`
	TableSize       int                  `json:"table_size"`
	Epsilon         float64              `json:"epsilon"`
	Batches         int                  `json:"batches"`
	InitialEpisodes int                  `json:"initial_episodes"`
	LastReport      *engine.Report       `json:"last_report,omitempty"`
	LastBatch       *metrics.BatchRecord `json:"last_batch,omitempty"`
}

type Option func(m *Master)

// WithReporter forwards training progress reports, from both initial
// training and refinement batches.
func WithReporter(reporter func(engine.Report)) Option {
	return func(m *Master) {
		if reporter != nil {
			m.reporters = append(m.reporters, reporter)
		}
	}
}

func WithBatchReporter(hook func(metrics.BatchRecord)) Option {
	return func(m *Master) {
		if hook != nil {
			m.batchHooks = append(m.batchHooks, hook)
		}
	}
}

// Master owns the process-wide learner. The first call that needs the
// table loads it, trains it if it is too small and starts background
// refinement; this happens once no matter how many requests race for it.
type Master struct {
	cfg        meta.Config
	learner    *learner.Learner
	live       *agent.EvaluationAgent
	history    *metrics.History
	reporters  []func(engine.Report)
	batchHooks []func(metrics.BatchRecord)

	ctx    context.Context
	cancel context.CancelFunc

	initOnce     sync.Once
	shutdownOnce sync.Once
	initialized  atomic.Bool
	lastReport   atomic.Pointer[engine.Report]
	scheduler    *Scheduler
	writer       *metrics.HistoryWriter
	done         chan struct{}

	// Episodes played by initial training, 0 if it was skipped.
	initialEpisodes atomic.Int64
}

func NewMaster(cfg meta.Config, options ...Option) *Master {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLearner(cfg)
	m := &Master{
		cfg:     cfg,
		learner: l,
		live:    agent.NewEvaluationAgent(l, cfg.ExploreRate),
		history: metrics.NewHistory(historyLimit),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// NewLearner builds a learner with the configured hyperparameters and an
// empty table.
func NewLearner(cfg meta.Config) *learner.Learner {
	return learner.New(
		learner.WithAlpha(cfg.Alpha),
		learner.WithGamma(cfg.Gamma),
		learner.WithSchedule(learner.Schedule{
			Start: cfg.EpsilonStart,
			Min:   cfg.EpsilonMin,
			Decay: cfg.EpsilonDecay,
		}),
		learner.WithSeed(cfg.Seed),
	)
}

// NewEngine builds a self-play engine for l with the configured seats.
func NewEngine(l *learner.Learner, cfg meta.Config, options ...engine.Option) *engine.Engine {
	options = append([]engine.Option{
		engine.WithSeats(
			agent.NewTrainingAgent(l, cfg.TrainExploreRate),
			agent.NewOpponentAgent(l, cfg.OpponentBlockRate),
		),
		engine.WithReportEvery(cfg.ReportEvery),
	}, options...)
	return engine.New(l, options...)
}

func (m *Master) Learner() *learner.Learner {
	return m.learner
}

// Init loads or trains the table and starts background refinement. Only
// the first call does any work; concurrent callers wait for it.
func (m *Master) Init() {
	m.initOnce.Do(m.init)
}

func (m *Master) init() {
	loaded := m.learner.Load(m.cfg.TablePath)
	log.Info().Int("entries", loaded).Str("path", m.cfg.TablePath).Msg("value table loaded")

	if loaded < m.cfg.MinTableEntries {
		log.Info().Int("episodes", m.cfg.InitialEpisodes).Msg("initial training started")
		e := NewEngine(m.learner, m.cfg, append(m.engineOptions(), engine.WithMetrics())...)
		metric, err := e.Train(m.ctx, m.cfg.InitialEpisodes)
		if err != nil {
			log.Warn().Err(err).Msg("initial training stopped early")
		}
		m.initialEpisodes.Store(int64(metric.Episodes))
		saved, err := m.learner.Save(m.cfg.TablePath)
		if err != nil {
			log.Error().Err(err).Msg("failed to save table after initial training")
		}
		log.Info().
			Int("episodes", metric.Episodes).
			Dur("duration", metric.Duration).
			Int("entries", saved).
			Msg("initial training complete")
	}

	if m.cfg.HistoryDir != "" {
		writer, err := metrics.NewHistoryWriter(m.cfg.HistoryDir, m.cfg.HistoryFlushEvery)
		if err != nil {
			log.Warn().Err(err).Msg("batch history disabled")
		} else {
			m.writer = writer
		}
	}

	options := []SchedulerOption{
		WithBatchEpisodes(m.cfg.BatchEpisodes),
		WithInterval(m.cfg.Interval),
		WithBackoff(m.cfg.Backoff),
		WithTablePath(m.cfg.TablePath),
		WithHistory(m.history),
		WithHistoryWriter(m.writer),
	}
	for _, hook := range m.batchHooks {
		options = append(options, WithBatchHook(hook))
	}
	m.scheduler = NewScheduler(
		m.learner,
		NewEngine(m.learner, m.cfg, append(m.engineOptions(), engine.WithMetrics())...),
		options...,
	)
	m.initialized.Store(true)

	go func() {
		defer close(m.done)
		m.scheduler.Run(m.ctx)
	}()
}

func (m *Master) engineOptions() []engine.Option {
	options := []engine.Option{engine.WithReporter(func(r engine.Report) {
		m.lastReport.Store(&r)
	})}
	for _, reporter := range m.reporters {
		options = append(options, engine.WithReporter(reporter))
	}
	return options
}

// Move plays the AI's turn on b, initializing the master first if needed.
func (m *Master) Move(b game.Board, ai game.Player) (game.Board, agent.Outcome) {
	m.Init()
	return m.live.ApplyAITurn(b, ai)
}

func (m *Master) Stats() Stats {
	stats := Stats{
		Initialized:     m.initialized.Load(),
		TableSize:       m.learner.Size(),
		Epsilon:         m.learner.Epsilon(),
		InitialEpisodes: int(m.initialEpisodes.Load()),
		LastReport:      m.lastReport.Load(),
	}
	if m.initialized.Load() {
		stats.Batches = m.scheduler.Batches()
	}
	if last, ok := m.history.Last(); ok {
		stats.LastBatch = &last
	}
	return stats
}

func (m *Master) History() []metrics.BatchRecord {
	return m.history.Records()
}

// Shutdown stops background refinement and waits for its final save, up to
// ctx's deadline. Later calls are no-ops.
func (m *Master) Shutdown(ctx context.Context) error {
	var err error
	m.shutdownOnce.Do(func() {
		m.cancel()
		// Block a racing first request from starting the job after cancel.
		m.initOnce.Do(func() {})
		if !m.initialized.Load() {
			return
		}

		select {
		case <-m.done:
		case <-ctx.Done():
			err = ctx.Err()
			log.Error().Err(err).Msg("background refinement did not stop in time")
			return
		}
		if m.writer != nil {
			start := time.Now()
			path, werr := m.writer.Close()
			if werr != nil {
				log.Warn().Err(werr).Msg("failed to close batch history")
			} else if path != "" {
				log.Info().Str("path", path).Dur("took", time.Since(start)).Msg("batch history flushed")
			}
		}
	})
	return err
}
