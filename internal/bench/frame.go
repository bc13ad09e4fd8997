package bench

import (
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/schedlab/wakebench/internal/kernelctl"
	"github.com/schedlab/wakebench/internal/stats"
)

// Frame is the snapshot handed to the renderer once per window tick.
// Renderers must not retain the slices: SameLat and MigrLat are reused by
// the next drain, and Windows/Toggles grow in place.
type Frame struct {
	ElapsedSec uint64
	FeatureOn  bool

	// Current is this tick's window; always set, even when the history is
	// full and no longer retains it.
	Current stats.WindowStats

	Windows []stats.WindowStats
	Toggles []ToggleEvent

	// This window's post-grace latencies, for the live histograms.
	SameLat []uint64
	MigrLat []uint64

	HasCounters bool
	Counters    kernelctl.Counters // delta since the previous window

	IdleStates []kernelctl.IdleState
	IdleDeltas []uint64 // per-state usage delta since the previous window
}

// Renderer consumes per-window frames. Implementations live in
// internal/report; a nil Renderer disables live output.
type Renderer interface {
	WindowTick(f Frame)
	Close()
}

// Results is everything the final report needs, returned after all workers
// have been joined.
type Results struct {
	History []stats.WindowStats
	Toggles []ToggleEvent

	// Full-run latency distributions per feature state (grace-filtered),
	// independent of the per-window exact percentiles.
	LifetimeOn  *hdrhistogram.Histogram
	LifetimeOff *hdrhistogram.Histogram

	HasCounters   bool
	CountersTotal kernelctl.Counters

	IdleStates    []kernelctl.IdleState
	IdleOnTotals  []uint64
	IdleOffTotals []uint64
}
