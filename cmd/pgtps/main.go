// Command pgtps drives an adaptive concurrency probe against a Postgres
// cluster: it ramps worker counts along a Fibonacci schedule, waits for
// throughput to stabilize at each level, and prints one row per level.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/pgtps/internal/config"
	"github.com/willibrandon/pgtps/internal/dsn"
	"github.com/willibrandon/pgtps/internal/logger"
	"github.com/willibrandon/pgtps/internal/output"
	"github.com/willibrandon/pgtps/internal/pgclient"
	"github.com/willibrandon/pgtps/internal/probe"
	"github.com/willibrandon/pgtps/internal/sampler"
	"github.com/willibrandon/pgtps/internal/workload"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "pgtps",
		Short:   "Adaptive transactions-per-second probe for Postgres",
		Version: version,
		RunE:    run,
	}
	config.BindFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromFlags(cmd)
	if err != nil {
		return err
	}

	logLevel := logger.LevelInfo
	if cfg.Debug {
		logLevel = logger.LevelDebug
	}
	logger.Init(logLevel, cfg.LogFile)
	defer logger.Close()

	d := dsn.Parse(cfg.Dsn)
	w, err := workload.New(d, cfg.Query, cfg.Transactional, cfg.Prepared)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	samplerClient, err := pgclient.Connect(ctx, d.String())
	if err != nil {
		return fmt.Errorf("pgtps: connect sampler: %w", err)
	}
	srvSampler, err := sampler.New(ctx, samplerClient)
	if err != nil {
		return fmt.Errorf("pgtps: init sampler: %w", err)
	}
	defer srvSampler.Close(ctx)

	table := output.New(os.Stdout)
	controller := probe.NewController(w, cfg.MaxThreads)

	for _, level := range probe.Levels(cfg.MinThreads, cfg.MaxThreads) {
		if ctx.Err() != nil {
			break
		}

		controller.Scaleup(ctx, level)
		controller.ResetLevel()

		verdict := controller.WaitStable(ctx, cfg.Spread, cfg.MinSamples, cfg.MaxWait)
		if !verdict.OK {
			table.MissingRow(time.Now(), level)
			break
		}

		if err := srvSampler.Next(ctx); err != nil {
			return fmt.Errorf("pgtps: sampler: %w", err)
		}

		table.Row(time.Now(), level, verdict.Result.TPS, verdict.Result.Latency,
			srvSampler.TPS(), srvSampler.WalPerSec(), verdict.Stable)
	}

	controller.Finish()
	return nil
}
