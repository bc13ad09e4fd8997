// Package config holds the immutable run configuration for a benchmark.
package config

import (
	"flag"
	"fmt"
	"runtime"
	"time"
)

// Mode selects the feature-toggling policy for a run.
type Mode int

const (
	// ModeAB forces the feature ON for the first half of the run and OFF
	// for the second half.
	ModeAB Mode = iota
	// ModeAuto inverts the feature at a fixed interval.
	ModeAuto
	// ModeManual inverts the feature only on a key press.
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeAB:
		return "ab"
	case ModeAuto:
		return "auto-toggle"
	case ModeManual:
		return "manual"
	}
	return "unknown"
}

// ParseMode maps the CLI spelling to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ab":
		return ModeAB, nil
	case "auto-toggle":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	}
	return ModeAB, fmt.Errorf("unknown mode %q (want ab, auto-toggle or manual)", s)
}

const (
	DefaultDuration = 60 * time.Second
	DefaultInterval = 5 * time.Second
	DefaultSleep    = 50 * time.Microsecond
	DefaultWarmup   = 3 * time.Second
	DefaultWindow   = time.Second
	DefaultGrace    = 100 * time.Millisecond
)

// Config is fixed after Load; components receive it by value.
type Config struct {
	Mode           Mode
	Workers        int
	NumCPU         int
	Duration       time.Duration
	ToggleInterval time.Duration
	SleepTarget    time.Duration
	Warmup         time.Duration
	Window         time.Duration
	Grace          time.Duration
	MaxCState      int   // deepest allowed C-state; -1 = no limit
	TimerSlackNS   int64 // per-thread timer slack; -1 = system default
	SpinWait       bool
	NoViz          bool
	CSV            bool
}

// Load parses args (without the program name) into a validated Config.
func Load(args []string) (Config, error) {
	cfg := Config{
		Mode:           ModeAB,
		NumCPU:         runtime.NumCPU(),
		Duration:       DefaultDuration,
		ToggleInterval: DefaultInterval,
		SleepTarget:    DefaultSleep,
		Warmup:         DefaultWarmup,
		Window:         DefaultWindow,
		Grace:          DefaultGrace,
		MaxCState:      -1,
		TimerSlackNS:   -1,
	}

	fs := flag.NewFlagSet("wakebench", flag.ContinueOnError)
	mode := fs.String("mode", "ab", "toggling policy: ab, auto-toggle or manual")
	fs.IntVar(&cfg.Workers, "workers", 0, "worker threads (0 = 2 per CPU)")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "total run duration")
	fs.DurationVar(&cfg.ToggleInterval, "interval", cfg.ToggleInterval, "auto-toggle interval")
	fs.DurationVar(&cfg.SleepTarget, "sleep", cfg.SleepTarget, "target sleep per wakeup cycle")
	fs.DurationVar(&cfg.Warmup, "warmup", cfg.Warmup, "warm-up time before measurement")
	fs.DurationVar(&cfg.Window, "window", cfg.Window, "statistics window length")
	fs.IntVar(&cfg.MaxCState, "max-cstate", -1, "limit the deepest C-state (-1 = no limit)")
	fs.Int64Var(&cfg.TimerSlackNS, "timer-slack", -1, "timer slack in ns (0 = minimum, -1 = system default)")
	fs.BoolVar(&cfg.SpinWait, "spin", false, "busy-wait instead of sleeping")
	fs.BoolVar(&cfg.NoViz, "no-viz", false, "disable live output")
	fs.BoolVar(&cfg.CSV, "csv", false, "emit one CSV row per window")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	m, err := ParseMode(*mode)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = m

	if cfg.Workers <= 0 {
		cfg.Workers = 2 * cfg.NumCPU
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.CSV {
		cfg.NoViz = true
	}
	if cfg.Window <= 0 {
		return cfg, fmt.Errorf("window must be positive, got %v", cfg.Window)
	}
	if cfg.Duration <= 0 {
		return cfg, fmt.Errorf("duration must be positive, got %v", cfg.Duration)
	}
	if cfg.SleepTarget <= 0 {
		return cfg, fmt.Errorf("sleep target must be positive, got %v", cfg.SleepTarget)
	}
	if cfg.Mode == ModeAuto && cfg.ToggleInterval <= cfg.Grace {
		return cfg, fmt.Errorf("toggle interval %v must exceed the grace period %v or every sample lands in the discard horizon",
			cfg.ToggleInterval, cfg.Grace)
	}
	return cfg, nil
}
