package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tictactoe/dashboard"
	"tictactoe/engine"
	"tictactoe/game"
	"tictactoe/gamemaster"
	"tictactoe/learner"
	"tictactoe/learner/agent"
	"tictactoe/meta"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"
)

func runTrain(args []string) error {
	var (
		episodes int
		noUI     bool
		logFile  string
	)
	cfg, err := parseConfig("train", args, func(fs *flag.FlagSet) {
		fs.IntVar(&episodes, "episodes", meta.InitialEpisodes, "Episodes to train")
		fs.BoolVar(&noUI, "no-ui", false, "Log progress instead of showing the dashboard")
		fs.StringVar(&logFile, "log-file", "train.log", "Log destination while the dashboard is shown")
	})
	if err != nil {
		return err
	}

	ui := !noUI && colorsEnabled()
	var logOut io.Writer = os.Stderr
	if ui {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(cfg.LogLevel, logOut)

	l := gamemaster.NewLearner(cfg)
	loaded := l.Load(cfg.TablePath)
	log.Info().Int("entries", loaded).Int("episodes", episodes).Msg("training started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan engine.Report, 64)
	done := make(chan dashboard.Done, 1)
	finished := make(chan struct{})
	var result dashboard.Done

	e := gamemaster.NewEngine(l, cfg, engine.WithMetrics(), engine.WithReporter(func(r engine.Report) {
		select {
		case updates <- r:
		default:
		}
	}))
	go func() {
		defer close(finished)
		metric, err := e.Train(ctx, episodes)
		result = dashboard.Done{Metric: metric, Err: err}
		done <- result
	}()

	if ui {
		if _, err := tea.NewProgram(dashboard.New(episodes, updates, done, cancel)).Run(); err != nil {
			log.Error().Err(err).Msg("dashboard failed")
			cancel()
		}
	}
	<-finished

	if result.Err != nil {
		log.Warn().Err(result.Err).Msg("training stopped early")
	}
	log.Info().
		Int("episodes", result.Metric.Episodes).
		Float64("win_rate", result.Metric.WinRate()).
		Dur("duration", result.Metric.Duration).
		Msg("training finished")

	if result.Err == nil {
		if err := demoGame(l, cfg, os.Stdout); err != nil {
			log.Warn().Err(err).Msg("demo game failed")
		}
	}

	saved, err := l.Save(cfg.TablePath)
	if err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	log.Info().Int("entries", saved).Str("path", cfg.TablePath).Msg("table saved")
	return nil
}

// demoGame prints one greedy game of the learner against the sparring seat.
// It plays on a frozen copy of the table, so l is left untouched.
func demoGame(l *learner.Learner, cfg meta.Config, w io.Writer) error {
	frozen := learner.New(
		learner.WithTable(l.Snapshot()),
		learner.WithSchedule(learner.Schedule{}),
		learner.WithSeed(cfg.Seed),
	)
	demo := gamemaster.NewEngine(frozen, cfg, engine.WithSeats(
		agent.NewEvaluationAgent(frozen, 0),
		agent.NewOpponentAgent(frozen, cfg.OpponentBlockRate),
	))
	episode, err := demo.Run(0)
	if err != nil {
		return err
	}

	au := aurora.NewAurora(colorsEnabled())
	board := game.NewBoard()
	fmt.Fprintln(w, au.Bold("Demo game"))
	for _, step := range episode.Steps {
		board.ApplyMove(step.Action, step.Player)
		fmt.Fprintf(w, "\n%s plays %d\n%s", step.Player, step.Action, dashboard.RenderBoard(board, au))
	}
	switch episode.Winner {
	case engine.LearningSide:
		fmt.Fprintln(w, au.Green("\nLearner wins"))
	case engine.LearningSide.Opponent():
		fmt.Fprintln(w, au.Red("\nLearner loses"))
	default:
		fmt.Fprintln(w, au.Yellow("\nDraw"))
	}
	return nil
}
