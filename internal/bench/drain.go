package bench

import (
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

// Lifetime histogram range: 1ns to 60s at 3 significant figures, ~40KB each.
const (
	lifetimeMin    = 1
	lifetimeMax    = 60_000_000_000
	lifetimeSigFig = 3
)

// drainResult holds one window's classified latencies. The slices are
// rebuilt every window; nothing carries over.
type drainResult struct {
	same []uint64 // cpu unchanged across the sleep
	migr []uint64 // scheduler moved the thread
}

func (d *drainResult) reset() {
	d.same = d.same[:0]
	d.migr = d.migr[:0]
}

// drainRings empties every worker ring. Samples timestamped before
// horizonNS are discarded (toggle transition noise, or the whole warm-up
// when the horizon is unbounded); survivors are classified by migration and
// recorded into the lifetime histogram for the current feature state.
func (r *Runner) drainRings(horizonNS int64) {
	r.dr.reset()
	life := r.lifeOff
	if r.tog.state {
		life = r.lifeOn
	}
	for _, w := range r.workers {
		for {
			s, ok := w.ring.Pop()
			if !ok {
				break
			}
			if s.Timestamp < horizonNS {
				continue
			}
			if s.CPUBefore != s.CPUAfter {
				r.dr.migr = append(r.dr.migr, s.Latency)
			} else {
				r.dr.same = append(r.dr.same, s.Latency)
			}
			v := int64(s.Latency)
			if v < lifetimeMin {
				v = lifetimeMin
			} else if v > lifetimeMax {
				v = lifetimeMax
			}
			_ = life.RecordValue(v)
		}
	}
}

func newLifetimeHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(lifetimeMin, lifetimeMax, lifetimeSigFig)
}
