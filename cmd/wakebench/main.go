package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/schedlab/wakebench/internal/bench"
	"github.com/schedlab/wakebench/internal/config"
	"github.com/schedlab/wakebench/internal/kernelctl"
	"github.com/schedlab/wakebench/internal/report"
	"github.com/schedlab/wakebench/pkg/logutil"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logutil.InitLogger()

	logger := logutil.GetLogger()
	defer logger.Sync()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "wakebench:", err)
		return 1
	}

	ctl := kernelctl.New(cfg.NumCPU)
	if _, err := ctl.Feature(); err != nil {
		fmt.Fprintf(os.Stderr, "wakebench: cannot read %s: %v\n", kernelctl.FeaturePath, err)
		return 1
	}
	// Every mode writes the feature flag at least once.
	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "wakebench: toggling the feature flag requires root")
		return 1
	}

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigch
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	var renderer bench.Renderer
	switch {
	case cfg.CSV:
		renderer = report.NewCSV(os.Stdout)
	case cfg.NoViz:
		renderer = report.NewStream(os.Stdout)
	case isTTY:
		renderer = report.NewDashboard(os.Stdout, cfg)
	default:
		renderer = report.NewStream(os.Stdout)
	}

	var keys <-chan byte
	restoreInput := func() {}
	if cfg.Mode == config.ModeManual {
		k, restore, err := report.EnableRawInput()
		if err != nil {
			logger.Warn("manual toggling needs a terminal", zap.Error(err))
		} else {
			keys = k
			restoreInput = restore
		}
	}

	// The terminal must come back (cursor shown, raw mode off) on every exit
	// path, panics included, and before the final report is printed.
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			renderer.Close()
			restoreInput()
		})
	}
	defer cleanup()

	runner := bench.New(bench.Options{
		Config:   cfg,
		Control:  ctl,
		Renderer: renderer,
		Keys:     keys,
		Log:      logger,
	})

	res, runErr := runner.Run(ctx)
	cleanup()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("benchmark failed", zap.Error(runErr))
		return 1
	}

	report.PrintFinal(os.Stdout, isTTY, cfg, ctl.Version(), res)
	return 0
}
