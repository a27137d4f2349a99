package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictactoe/communication/server"
	"tictactoe/gamemaster"

	"github.com/rs/zerolog/log"
)

func runServe(args []string) error {
	var eager bool
	cfg, err := parseConfig("serve", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&eager, "eager", false, "Load or train the table at startup instead of on the first request")
	})
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel, os.Stderr)

	hub := server.NewHub()
	master := gamemaster.NewMaster(cfg,
		gamemaster.WithReporter(hub.PublishReport),
		gamemaster.WithBatchReporter(hub.PublishBatch),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("panic in serve")
			shutdownMaster(master)
			panic(r)
		}
	}()

	hubDone := make(chan struct{})
	defer close(hubDone)
	go hub.Run(hubDone)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Init runs off the main goroutine so a signal during startup training
	// still reaches the shutdown path below.
	if eager {
		go master.Init()
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(master, hub).Routes(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	log.Info().Str("addr", cfg.Addr).Msg("server listening")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("forced close failed")
		}
	}

	shutdownMaster(master)
	return runErr
}

// shutdownMaster stops refinement and waits for the final save. A slow save
// is logged, never fatal.
func shutdownMaster(master *gamemaster.Master) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := master.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
