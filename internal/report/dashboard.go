package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/schedlab/wakebench/internal/bench"
	"github.com/schedlab/wakebench/internal/config"
	"github.com/schedlab/wakebench/internal/stats"
)

const (
	maxTableRows = 20
	maxBarWidth  = 40
)

// Dashboard redraws a full-screen live view each window: header, recent
// window table with toggle markers, side-by-side same-CPU/migrated
// histograms, and optional counter and C-state delta lines.
//
// Each tick is rendered as a pure function of the frame into one string,
// then written in a single call. Lines end with \r\n so the view survives
// raw terminal mode in manual runs.
type Dashboard struct {
	out io.Writer
	cfg config.Config
}

var _ bench.Renderer = (*Dashboard)(nil)

func NewDashboard(out io.Writer, cfg config.Config) *Dashboard {
	fmt.Fprint(out, ansiHideCursor, ansiClear, ansiHome)
	return &Dashboard{out: out, cfg: cfg}
}

func (d *Dashboard) WindowTick(f bench.Frame) {
	fmt.Fprint(d.out, renderFrame(d.cfg, f))
}

func (d *Dashboard) Close() {
	fmt.Fprint(d.out, ansiShowCursor)
}

// renderFrame builds the complete screen for one tick.
func renderFrame(cfg config.Config, f bench.Frame) string {
	var sb strings.Builder
	sb.WriteString(ansiHome)

	writeHeader(&sb, cfg, f)
	line(&sb, "")
	line(&sb, fmt.Sprintf("%s%-6s %10s %10s %10s %10s  %-3s %10s %6s%s",
		ansiDim, "Time", "p50", "p95", "p99", "max", "POC", "Wakeups/s", "Migr%", ansiReset))

	rows := writeTable(&sb, f)
	for ; rows < maxTableRows; rows++ {
		line(&sb, "")
	}

	writeHistograms(&sb, f)

	if f.HasCounters {
		c := f.Counters
		total := c.Hit + c.Fallthrough
		hitRate := 0.0
		if total > 0 {
			hitRate = 100 * float64(c.Hit) / float64(total)
		}
		line(&sb, fmt.Sprintf("%s  POC: hit=%d fall=%d (%.1f%%) l2=%d llc=%d%s",
			ansiDim, c.Hit, c.Fallthrough, hitRate, c.L2Hit, c.LLCHit, ansiReset))
	}
	if len(f.IdleStates) > 0 {
		var sum uint64
		for _, v := range f.IdleDeltas {
			sum += v
		}
		var cs strings.Builder
		cs.WriteString(ansiDim + "  C-state: ")
		for i, st := range f.IdleStates {
			pct := 0.0
			if sum > 0 {
				pct = 100 * float64(f.IdleDeltas[i]) / float64(sum)
			}
			fmt.Fprintf(&cs, "%s=%.1f%% ", st.Name, pct)
		}
		cs.WriteString(ansiReset)
		line(&sb, cs.String())
	}

	sb.WriteString(ansiEraseBelow)
	return sb.String()
}

func writeHeader(sb *strings.Builder, cfg config.Config, f bench.Frame) {
	state := ansiRed + ansiBold + "[OFF]" + ansiReset
	if f.FeatureOn {
		state = ansiGreen + ansiBold + "[ON ]" + ansiReset
	}
	line(sb, fmt.Sprintf("%swakebench v%s%s | POC: %s | Workers: %d | %s elapsed",
		ansiBold, Version, ansiReset, state, cfg.Workers, formatElapsed(f.ElapsedSec)))

	var hdr strings.Builder
	fmt.Fprintf(&hdr, "Mode: %s", cfg.Mode)
	if cfg.Mode == config.ModeAuto {
		fmt.Fprintf(&hdr, " (%v)", cfg.ToggleInterval)
	}
	fmt.Fprintf(&hdr, " | CPUs: %d | Sleep: %v", cfg.NumCPU, cfg.SleepTarget)
	if cfg.MaxCState >= 0 {
		fmt.Fprintf(&hdr, " | %smax-cstate=%d%s", ansiYellow, cfg.MaxCState, ansiReset)
	}
	if cfg.TimerSlackNS >= 0 {
		fmt.Fprintf(&hdr, " | %sslack=%dns%s", ansiYellow, cfg.TimerSlackNS, ansiReset)
	}
	if cfg.SpinWait {
		fmt.Fprintf(&hdr, " | %sSPIN%s", ansiYellow, ansiReset)
	}
	if cfg.Mode == config.ModeManual {
		fmt.Fprintf(&hdr, " | Press %st%s to toggle, %sq%s to quit",
			ansiBold, ansiReset, ansiBold, ansiReset)
	}
	line(sb, hdr.String())
}

// writeTable emits the most recent windows, interleaving toggle markers at
// the second they happened, and returns the number of rows written.
func writeTable(sb *strings.Builder, f bench.Frame) int {
	start := len(f.Windows) - maxTableRows
	if start < 0 {
		start = 0
	}
	rows := 0
	for _, w := range f.Windows[start:] {
		for _, ev := range f.Toggles {
			if ev.Offset == w.Offset {
				color := ansiRed
				if ev.Enabled {
					color = ansiGreen
				}
				line(sb, fmt.Sprintf("%s --- POC toggled %s --- %s",
					color, strings.TrimSpace(onOff(ev.Enabled)), ansiReset))
				rows++
			}
		}
		color := ansiRed
		if w.FeatureOn {
			color = ansiGreen
		}
		line(sb, fmt.Sprintf("%s%-6s %10s %10s %10s %10s  %s %10d %5.1f%%%s",
			color, formatElapsed(w.Offset),
			FormatNS(w.P50), FormatNS(w.P95), FormatNS(w.P99), FormatNS(w.Max),
			onOff(w.FeatureOn), w.PerSec, w.MigrationPct, ansiReset))
		rows++
	}
	return rows
}

func writeHistograms(sb *strings.Builder, f bench.Frame) {
	sameHist := stats.Histogram(f.SameLat)
	migrHist := stats.Histogram(f.MigrLat)
	sameN, migrN := len(f.SameLat), len(f.MigrLat)

	samePct := 0.0
	if total := sameN + migrN; total > 0 {
		samePct = 100 * float64(sameN) / float64(total)
	}
	line(sb, "")
	line(sb, fmt.Sprintf("%sSame CPU (%.1f%%):%s                         %sMigrated (%.1f%%):%s",
		ansiDim, samePct, ansiReset, ansiDim, 100-samePct, ansiReset))

	var maxSame, maxMigr uint64
	for b := 0; b < stats.NumBuckets; b++ {
		if sameHist[b] > maxSame {
			maxSame = sameHist[b]
		}
		if migrHist[b] > maxMigr {
			maxMigr = migrHist[b]
		}
	}

	width := maxBarWidth/2 - 2
	for b := 0; b < stats.NumBuckets; b++ {
		sp, mp := 0.0, 0.0
		if sameN > 0 {
			sp = 100 * float64(sameHist[b]) / float64(sameN)
		}
		if migrN > 0 {
			mp = 100 * float64(migrHist[b]) / float64(migrN)
		}
		line(sb, fmt.Sprintf("  %s %s %5.1f%%  │ %s %5.1f%%",
			stats.BucketLabels[b],
			bar(sameHist[b], maxSame, width), sp,
			bar(migrHist[b], maxMigr, width), mp))
	}
}

// bar renders a fixed-width proportional bar.
func bar(count, max uint64, width int) string {
	filled := 0
	if max > 0 {
		filled = int(uint64(width) * count / max)
	}
	return strings.Repeat("█", filled) + strings.Repeat(" ", width-filled)
}

func line(sb *strings.Builder, s string) {
	sb.WriteString(s)
	sb.WriteString("\r\n")
}
