package report

import (
	"fmt"
	"io"
	"strings"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/schedlab/wakebench/internal/bench"
	"github.com/schedlab/wakebench/internal/config"
	"github.com/schedlab/wakebench/internal/stats"
)

// PrintFinal writes the end-of-run comparison: per-state aggregates with
// deltas, the same-CPU/migrated breakdown, full-run histogram percentiles,
// and whatever counter and C-state data the kernel exposed.
func PrintFinal(out io.Writer, color bool, cfg config.Config, version string, res bench.Results) {
	on := stats.AggregateWindows(res.History, true)
	off := stats.AggregateWindows(res.History, false)

	rule := strings.Repeat("=", 64)
	fmt.Fprintf(out, "\n%s\n", rule)
	fmt.Fprintf(out, " wakebench v%s final report\n", Version)
	if version != "" {
		fmt.Fprintf(out, " feature: %s\n", version)
	}
	fmt.Fprintf(out, " mode=%s workers=%d sleep=%v window=%v duration=%v\n",
		cfg.Mode, cfg.Workers, cfg.SleepTarget, cfg.Window, cfg.Duration)
	fmt.Fprintf(out, " windows: %d ON, %d OFF (toggles: %d)\n",
		on.Windows, off.Windows, len(res.Toggles))
	fmt.Fprintf(out, "%s\n", rule)

	switch {
	case on.Windows == 0 && off.Windows == 0:
		fmt.Fprintln(out, "No measurement data collected.")
		return
	case on.Windows == 0:
		fmt.Fprintln(out, "\nOnly POC=OFF windows recorded; no comparison possible.")
		printSingle(out, "OFF", off)
	case off.Windows == 0:
		fmt.Fprintln(out, "\nOnly POC=ON windows recorded; no comparison possible.")
		printSingle(out, "ON", on)
	default:
		printComparison(out, color, on, off)
	}

	printLifetime(out, res)

	if res.HasCounters {
		c := res.CountersTotal
		total := c.Hit + c.Fallthrough
		hitRate := 0.0
		if total > 0 {
			hitRate = 100 * float64(c.Hit) / float64(total)
		}
		fmt.Fprintf(out, "\nPOC counters (whole run):\n")
		fmt.Fprintf(out, "  hit=%d fallthrough=%d hit-rate=%.1f%% l2=%d llc=%d\n",
			c.Hit, c.Fallthrough, hitRate, c.L2Hit, c.LLCHit)
	}

	printIdle(out, res)
}

func printComparison(out io.Writer, color bool, on, off stats.Aggregate) {
	fmt.Fprintf(out, "\n%-22s %14s %14s %14s\n", "", "POC=ON", "POC=OFF", "Delta")

	row := func(name string, onV, offV float64) {
		fmt.Fprintf(out, "%-22s %14s %14s %14s\n",
			name, formatNSF(onV), formatNSF(offV), delta(color, onV, offV))
	}

	fmt.Fprintf(out, "%-22s %14d %14d\n", "Samples", on.TotalSamples, off.TotalSamples)
	fmt.Fprintf(out, "%-22s %14d %14d\n", "Windows", on.Windows, off.Windows)
	row("Avg p50", on.AvgP50, off.AvgP50)
	row("Avg p95", on.AvgP95, off.AvgP95)
	row("Avg p99", on.AvgP99, off.AvgP99)
	row("Avg p99.9", on.AvgP999, off.AvgP999)
	row("Avg max", on.AvgMax, off.AvgMax)
	row("Mean latency", on.MeanLatency(), off.MeanLatency())
	row("Avg stddev", on.AvgStddev, off.AvgStddev)
	fmt.Fprintf(out, "%-22s %13.1f%% %13.1f%% %14s\n", "Avg migration",
		on.AvgMigrationPct, off.AvgMigrationPct,
		delta(color, on.AvgMigrationPct, off.AvgMigrationPct))
	fmt.Fprintf(out, "%-22s %14d %14d\n", "Total migrations",
		on.TotalMigrations, off.TotalMigrations)

	fmt.Fprintf(out, "\nSame-CPU wakeups:\n")
	row("  Avg p50", on.AvgSameP50, off.AvgSameP50)
	row("  Avg p95", on.AvgSameP95, off.AvgSameP95)
	row("  Avg p99", on.AvgSameP99, off.AvgSameP99)

	if on.MigrWindows > 0 || off.MigrWindows > 0 {
		fmt.Fprintf(out, "\nMigrated wakeups (%d/%d windows):\n",
			on.MigrWindows, off.MigrWindows)
		row("  Avg p50", on.AvgMigrP50, off.AvgMigrP50)
		row("  Avg p95", on.AvgMigrP95, off.AvgMigrP95)
		row("  Avg p99", on.AvgMigrP99, off.AvgMigrP99)
	}
}

func printSingle(out io.Writer, state string, a stats.Aggregate) {
	fmt.Fprintf(out, "\n%-22s %14s\n", "", "POC="+state)
	fmt.Fprintf(out, "%-22s %14d\n", "Samples", a.TotalSamples)
	fmt.Fprintf(out, "%-22s %14d\n", "Windows", a.Windows)
	fmt.Fprintf(out, "%-22s %14s\n", "Avg p50", formatNSF(a.AvgP50))
	fmt.Fprintf(out, "%-22s %14s\n", "Avg p95", formatNSF(a.AvgP95))
	fmt.Fprintf(out, "%-22s %14s\n", "Avg p99", formatNSF(a.AvgP99))
	fmt.Fprintf(out, "%-22s %14s\n", "Avg p99.9", formatNSF(a.AvgP999))
	fmt.Fprintf(out, "%-22s %14s\n", "Avg max", formatNSF(a.AvgMax))
	fmt.Fprintf(out, "%-22s %14s\n", "Mean latency", formatNSF(a.MeanLatency()))
	fmt.Fprintf(out, "%-22s %13.1f%%\n", "Avg migration", a.AvgMigrationPct)
}

func printLifetime(out io.Writer, res bench.Results) {
	if res.LifetimeOn == nil && res.LifetimeOff == nil {
		return
	}
	printed := false
	hdr := func() {
		if !printed {
			fmt.Fprintf(out, "\nFull-run distribution:\n")
			fmt.Fprintf(out, "%-10s %12s %12s %12s %12s\n",
				"", "p50", "p99", "p99.9", "max")
			printed = true
		}
	}
	for _, h := range []struct {
		name string
		hist *hdrhistogram.Histogram
	}{
		{"POC=ON", res.LifetimeOn},
		{"POC=OFF", res.LifetimeOff},
	} {
		if h.hist == nil || h.hist.TotalCount() == 0 {
			continue
		}
		hdr()
		fmt.Fprintf(out, "%-10s %12s %12s %12s %12s\n", h.name,
			FormatNS(uint64(h.hist.ValueAtQuantile(50))),
			FormatNS(uint64(h.hist.ValueAtQuantile(99))),
			FormatNS(uint64(h.hist.ValueAtQuantile(99.9))),
			FormatNS(uint64(h.hist.Max())))
	}
}

func printIdle(out io.Writer, res bench.Results) {
	if len(res.IdleStates) == 0 {
		return
	}
	var sumOn, sumOff uint64
	for i := range res.IdleStates {
		sumOn += res.IdleOnTotals[i]
		sumOff += res.IdleOffTotals[i]
	}
	if sumOn == 0 && sumOff == 0 {
		return
	}
	fmt.Fprintf(out, "\nC-state entries (cpu0):\n")
	fmt.Fprintf(out, "%-10s %12s %8s %12s %8s\n", "", "ON", "", "OFF", "")
	for i, st := range res.IdleStates {
		onPct, offPct := 0.0, 0.0
		if sumOn > 0 {
			onPct = 100 * float64(res.IdleOnTotals[i]) / float64(sumOn)
		}
		if sumOff > 0 {
			offPct = 100 * float64(res.IdleOffTotals[i]) / float64(sumOff)
		}
		fmt.Fprintf(out, "%-10s %12d %7.1f%% %12d %7.1f%%\n",
			st.Name, res.IdleOnTotals[i], onPct, res.IdleOffTotals[i], offPct)
	}
}

// delta renders the ON-vs-OFF relative change; OFF is the baseline.
func delta(color bool, onV, offV float64) string {
	if offV == 0 {
		return "N/A"
	}
	pct := 100 * (onV - offV) / offV
	s := fmt.Sprintf("%+.1f%%", pct)
	if !color {
		return s
	}
	if pct < 0 {
		return ansiGreen + s + ansiReset
	}
	return ansiRed + s + ansiReset
}

func formatNSF(ns float64) string {
	if ns < 0 {
		ns = 0
	}
	return FormatNS(uint64(ns + 0.5))
}
