package bench

import (
	"testing"
	"time"

	"github.com/schedlab/wakebench/internal/config"
)

func testRunner(ctl *fakeControl, workers int) *Runner {
	r := New(Options{
		Config: config.Config{
			Mode:        config.ModeManual,
			Workers:     workers,
			Duration:    time.Minute,
			Window:      time.Second,
			SleepTarget: 50 * time.Microsecond,
			Grace:       100 * time.Millisecond,
		},
		Control: ctl,
	})
	r.workers = make([]*worker, workers)
	for i := range r.workers {
		r.workers[i] = newWorker(i, 50*time.Microsecond, false, -1)
	}
	return r
}

func push(w *worker, latency uint64, ts int64, before, after int32) {
	w.ring.Push(Sample{Latency: latency, Timestamp: ts, CPUBefore: before, CPUAfter: after})
}

// TestDrainRings_ClassifiesByMigration: same-CPU and migrated samples land in
// separate sets.
func TestDrainRings_ClassifiesByMigration(t *testing.T) {
	r := testRunner(newFakeControl(false), 2)
	push(r.workers[0], 100, 10, 0, 0)
	push(r.workers[0], 200, 11, 1, 2)
	push(r.workers[1], 300, 12, 3, 3)

	r.drainRings(0)

	if len(r.dr.same) != 2 || len(r.dr.migr) != 1 {
		t.Fatalf("same/migr = %d/%d, want 2/1", len(r.dr.same), len(r.dr.migr))
	}
	if r.dr.migr[0] != 200 {
		t.Errorf("migrated latency = %d, want 200", r.dr.migr[0])
	}
}

// TestDrainRings_DiscardsBeforeHorizon: samples timestamped inside the grace
// window after a toggle never reach statistics, but later ones do.
func TestDrainRings_DiscardsBeforeHorizon(t *testing.T) {
	r := testRunner(newFakeControl(false), 1)
	horizon := int64(500)
	push(r.workers[0], 100, horizon-1, 0, 0)
	push(r.workers[0], 200, horizon, 0, 0)
	push(r.workers[0], 300, horizon+1, 0, 0)

	r.drainRings(horizon)

	if len(r.dr.same) != 2 {
		t.Fatalf("kept %d samples, want 2", len(r.dr.same))
	}
	if r.dr.same[0] != 200 || r.dr.same[1] != 300 {
		t.Errorf("kept %v, want [200 300]", r.dr.same)
	}
	if r.workers[0].ring.Len() != 0 {
		t.Error("ring not fully drained")
	}
}

// TestDrainRings_RecordsLifetimeByState: surviving samples feed the histogram
// of the current feature state only.
func TestDrainRings_RecordsLifetimeByState(t *testing.T) {
	r := testRunner(newFakeControl(false), 1)

	push(r.workers[0], 1000, 10, 0, 0)
	r.drainRings(0)
	if r.lifeOff.TotalCount() != 1 || r.lifeOn.TotalCount() != 0 {
		t.Fatalf("off/on counts = %d/%d after OFF drain, want 1/0",
			r.lifeOff.TotalCount(), r.lifeOn.TotalCount())
	}

	r.tog.state = true
	push(r.workers[0], 2000, 20, 0, 0)
	r.drainRings(0)
	if r.lifeOn.TotalCount() != 1 {
		t.Errorf("on count = %d after ON drain, want 1", r.lifeOn.TotalCount())
	}
}

// TestDrainRings_ClampsOutOfRange: a zero latency still records (clamped to
// the histogram minimum) instead of erroring.
func TestDrainRings_ClampsOutOfRange(t *testing.T) {
	r := testRunner(newFakeControl(false), 1)
	push(r.workers[0], 0, 10, 0, 0)
	r.drainRings(0)
	if r.lifeOff.TotalCount() != 1 {
		t.Errorf("count = %d, want 1", r.lifeOff.TotalCount())
	}
	if len(r.dr.same) != 1 || r.dr.same[0] != 0 {
		t.Errorf("same = %v, want [0]", r.dr.same)
	}
}

// TestDrainRings_ResetsBetweenWindows: a second drain starts from empty sets.
func TestDrainRings_ResetsBetweenWindows(t *testing.T) {
	r := testRunner(newFakeControl(false), 1)
	push(r.workers[0], 100, 10, 0, 0)
	r.drainRings(0)
	r.drainRings(0)
	if len(r.dr.same) != 0 || len(r.dr.migr) != 0 {
		t.Errorf("second drain kept %d/%d samples, want 0/0",
			len(r.dr.same), len(r.dr.migr))
	}
}
