package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tictactoe/communication/client"
	"tictactoe/dashboard"
	"tictactoe/game"

	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"
)

func runPlay(args []string) error {
	var (
		serverURL string
		symbol    string
	)
	cfg, err := parseConfig("play", args, func(fs *flag.FlagSet) {
		fs.StringVar(&serverURL, "server", "http://localhost:5000", "Server URL")
		fs.StringVar(&symbol, "as", "X", "Your symbol, X or O; X moves first")
	})
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel, os.Stderr)

	human, err := game.ParsePlayer(strings.ToUpper(symbol))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return play(ctx, client.New(serverURL), human, os.Stdin, os.Stdout, aurora.NewAurora(colorsEnabled()))
}

func play(ctx context.Context, c *client.Client, human game.Player, in io.Reader, out io.Writer, au aurora.Aurora) error {
	ai := human.Opponent()
	board, err := c.NewGame(ctx)
	if err != nil {
		return err
	}

	if human == game.O {
		var message string
		if board, message, err = c.Move(ctx, board, ai); err != nil {
			return err
		}
		if message != "" {
			fmt.Fprintln(out, au.Bold(message))
			printStats(ctx, c, out)
			return nil
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "\n%s\nYour move (%s): ", dashboard.RenderBoard(board, au), human)
		if !scanner.Scan() {
			return scanner.Err()
		}
		cell, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || !board.ApplyMove(cell, human) {
			fmt.Fprintln(out, au.Red("Pick a free cell from 0 to 8."))
			continue
		}

		next, message, err := c.Move(ctx, board, ai)
		if err != nil {
			return err
		}
		board = next
		if message != "" {
			fmt.Fprintf(out, "\n%s\n%s\n", dashboard.RenderBoard(board, au), au.Bold(message))
			printStats(ctx, c, out)
			return nil
		}
	}
}

// printStats shows how much the server has learned so far. It is best
// effort: the game is already over.
func printStats(ctx context.Context, c *client.Client, out io.Writer) {
	stats, err := c.Stats(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("failed to fetch stats")
		return
	}
	fmt.Fprintf(out, "The AI knows %d state-action values (epsilon %.3f, %d refinement batches).\n",
		stats.TableSize, stats.Epsilon, stats.Batches)
}
