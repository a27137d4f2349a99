package meta

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"tictactoe/engine"
	"tictactoe/learner"
	"tictactoe/learner/agent"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
	Seed     uint64 `yaml:"seed"`

	InitialEpisodes int           `yaml:"initial_episodes"`
	BatchEpisodes   int           `yaml:"batch_episodes"`
	Interval        time.Duration `yaml:"interval"`
	Backoff         time.Duration `yaml:"backoff"`
	MinTableEntries int           `yaml:"min_table_entries"`
	ReportEvery     int           `yaml:"report_every"`
	TablePath       string        `yaml:"table_path"`

	HistoryDir        string `yaml:"history_dir"`
	HistoryFlushEvery int    `yaml:"history_flush_every"`

	Alpha        float64 `yaml:"alpha"`
	Gamma        float64 `yaml:"gamma"`
	EpsilonStart float64 `yaml:"epsilon_start"`
	EpsilonMin   float64 `yaml:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`

	ExploreRate       float64 `yaml:"explore_rate"`        // live play
	TrainExploreRate  float64 `yaml:"train_explore_rate"`  // learning seat in self-play
	OpponentBlockRate float64 `yaml:"opponent_block_rate"` // sparring seat in self-play
}

func Default() Config {
	return Config{
		Addr:     ":5000",
		LogLevel: "info",

		InitialEpisodes: InitialEpisodes,
		BatchEpisodes:   BatchEpisodes,
		Interval:        RefineInterval,
		Backoff:         Backoff,
		MinTableEntries: MinTableEntries,
		ReportEvery:     engine.DefaultReportEvery,
		TablePath:       TablePath,

		HistoryDir:        "history",
		HistoryFlushEvery: 20,

		Alpha:        learner.DefaultAlpha,
		Gamma:        learner.DefaultGamma,
		EpsilonStart: learner.DefaultEpsilonStart,
		EpsilonMin:   learner.DefaultEpsilonMin,
		EpsilonDecay: learner.DefaultEpsilonDecay,

		ExploreRate:       agent.DefaultExploreRate,
		TrainExploreRate:  engine.DefaultExploreRate,
		OpponentBlockRate: engine.DefaultBlockRate,
	}
}

// Load overlays the YAML file at path on the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// RegisterFlags binds the most commonly tuned options to fs, using the
// current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "RNG seed, 0 for time based")
	fs.IntVar(&c.InitialEpisodes, "initial-episodes", c.InitialEpisodes, "Episodes to bootstrap a small table")
	fs.IntVar(&c.BatchEpisodes, "batch-episodes", c.BatchEpisodes, "Episodes per refinement batch")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Period between refinement batches")
	fs.StringVar(&c.TablePath, "table", c.TablePath, "Value table file")
	fs.StringVar(&c.HistoryDir, "history-dir", c.HistoryDir, "Directory for batch history parquet files, empty to disable")
}

func (c Config) Validate() error {
	var errs []error
	if c.BatchEpisodes <= 0 {
		errs = append(errs, errors.New("batch_episodes must be positive"))
	}
	if c.InitialEpisodes < 0 {
		errs = append(errs, errors.New("initial_episodes must not be negative"))
	}
	if c.Interval < 0 || c.Backoff < 0 {
		errs = append(errs, errors.New("interval and backoff must not be negative"))
	}
	if c.TablePath == "" {
		errs = append(errs, errors.New("table_path is required"))
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		errs = append(errs, errors.New("alpha must be in (0, 1]"))
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		errs = append(errs, errors.New("gamma must be in [0, 1]"))
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.EpsilonStart || c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		errs = append(errs, errors.New("epsilon schedule must satisfy 0 <= min <= start and 0 < decay <= 1"))
	}
	return errors.Join(errs...)
}
