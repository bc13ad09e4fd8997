package stats

import (
	"math"
	"testing"
)

func window(on bool, count, p50, migr uint64) WindowStats {
	w := WindowStats{FeatureOn: on}
	w.Count = count
	w.Sum = count * p50
	w.P50 = p50
	w.P95 = p50 * 2
	w.P99 = p50 * 3
	w.Migrations = migr
	if count > 0 {
		w.MigrationPct = 100 * float64(migr) / float64(count)
	}
	w.SameCount = count - migr
	w.SameP50 = p50
	if migr > 0 {
		w.MigrCount = migr
		w.MigrP50 = p50 * 4
	}
	return w
}

// TestAggregateWindows_SplitsByState verifies each state only sees its own
// windows and averages are per-window, not sample-weighted.
func TestAggregateWindows_SplitsByState(t *testing.T) {
	history := []WindowStats{
		window(true, 100, 1000, 10),
		window(true, 100, 3000, 0),
		window(false, 200, 2000, 50),
	}

	on := AggregateWindows(history, true)
	if on.Windows != 2 {
		t.Fatalf("on.Windows = %d, want 2", on.Windows)
	}
	if on.AvgP50 != 2000 {
		t.Errorf("on.AvgP50 = %f, want 2000", on.AvgP50)
	}
	if on.TotalSamples != 200 {
		t.Errorf("on.TotalSamples = %d, want 200", on.TotalSamples)
	}
	if on.TotalMigrations != 10 {
		t.Errorf("on.TotalMigrations = %d, want 10", on.TotalMigrations)
	}
	// Only one ON window had migrations, so the migrated average divides by
	// the migrated-window count, not the total window count.
	if on.MigrWindows != 1 {
		t.Fatalf("on.MigrWindows = %d, want 1", on.MigrWindows)
	}
	if on.AvgMigrP50 != 4000 {
		t.Errorf("on.AvgMigrP50 = %f, want 4000", on.AvgMigrP50)
	}

	off := AggregateWindows(history, false)
	if off.Windows != 1 || off.AvgP50 != 2000 || off.TotalSamples != 200 {
		t.Errorf("off = %+v, want 1 window at p50 2000, 200 samples", off)
	}
}

// TestAggregateWindows_SingleState verifies the absent state yields a clean
// zero value with no NaN leakage.
func TestAggregateWindows_SingleState(t *testing.T) {
	history := []WindowStats{
		window(false, 50, 700, 5),
		window(false, 50, 900, 0),
	}

	on := AggregateWindows(history, true)
	if on.Windows != 0 {
		t.Fatalf("on.Windows = %d, want 0", on.Windows)
	}
	for name, v := range map[string]float64{
		"AvgP50": on.AvgP50, "AvgMigrationPct": on.AvgMigrationPct,
		"AvgMigrP50": on.AvgMigrP50, "MeanLatency": on.MeanLatency(),
	} {
		if math.IsNaN(v) || v != 0 {
			t.Errorf("%s = %f, want 0", name, v)
		}
	}
}

// TestAggregateWindows_SkipsEmptyWindows verifies zero-sample windows never
// dilute the averages.
func TestAggregateWindows_SkipsEmptyWindows(t *testing.T) {
	history := []WindowStats{
		window(true, 0, 0, 0),
		window(true, 100, 1000, 0),
	}
	on := AggregateWindows(history, true)
	if on.Windows != 1 {
		t.Fatalf("on.Windows = %d, want 1", on.Windows)
	}
	if on.AvgP50 != 1000 {
		t.Errorf("on.AvgP50 = %f, want 1000", on.AvgP50)
	}
}

// TestAggregate_MeanLatency verifies the sample-weighted mean.
func TestAggregate_MeanLatency(t *testing.T) {
	a := Aggregate{TotalSamples: 4, TotalSum: 1000}
	if got := a.MeanLatency(); got != 250 {
		t.Errorf("MeanLatency = %f, want 250", got)
	}
	if got := (Aggregate{}).MeanLatency(); got != 0 {
		t.Errorf("empty MeanLatency = %f, want 0", got)
	}
}
