package stats

// Aggregate averages per-window statistics across all windows sharing one
// feature state. Averages are unweighted by sample count: every window
// contributes equally, matching the row-per-window view the live table shows.
type Aggregate struct {
	Windows     int
	MigrWindows int // windows that saw at least one migration

	TotalSamples    uint64
	TotalSum        uint64
	TotalMigrations uint64

	AvgP50          float64
	AvgP95          float64
	AvgP99          float64
	AvgP999         float64
	AvgMax          float64
	AvgStddev       float64
	AvgMigrationPct float64

	AvgSameP50 float64
	AvgSameP95 float64
	AvgSameP99 float64

	AvgMigrP50 float64
	AvgMigrP95 float64
	AvgMigrP99 float64
}

// MeanLatency returns the sample-weighted mean over all aggregated windows.
func (a Aggregate) MeanLatency() float64 {
	if a.TotalSamples == 0 {
		return 0
	}
	return float64(a.TotalSum) / float64(a.TotalSamples)
}

// AggregateWindows folds every non-empty window with the requested feature
// state into an Aggregate. A state with no windows yields the zero value, so
// single-state runs never divide by zero.
func AggregateWindows(history []WindowStats, featureOn bool) Aggregate {
	var a Aggregate
	var sumP50, sumP95, sumP99, sumP999, sumMax, sumStddev, sumMigPct float64
	var sumSP50, sumSP95, sumSP99 float64
	var sumMP50, sumMP95, sumMP99 float64

	for i := range history {
		w := &history[i]
		if w.FeatureOn != featureOn || w.Count == 0 {
			continue
		}
		a.Windows++
		a.TotalSamples += w.Count
		a.TotalSum += w.Sum
		a.TotalMigrations += w.Migrations
		sumP50 += float64(w.P50)
		sumP95 += float64(w.P95)
		sumP99 += float64(w.P99)
		sumP999 += float64(w.P999)
		sumMax += float64(w.Max)
		sumStddev += w.Stddev
		sumMigPct += w.MigrationPct
		if w.SameCount > 0 {
			sumSP50 += float64(w.SameP50)
			sumSP95 += float64(w.SameP95)
			sumSP99 += float64(w.SameP99)
		}
		if w.MigrCount > 0 {
			sumMP50 += float64(w.MigrP50)
			sumMP95 += float64(w.MigrP95)
			sumMP99 += float64(w.MigrP99)
			a.MigrWindows++
		}
	}

	if a.Windows > 0 {
		n := float64(a.Windows)
		a.AvgP50 = sumP50 / n
		a.AvgP95 = sumP95 / n
		a.AvgP99 = sumP99 / n
		a.AvgP999 = sumP999 / n
		a.AvgMax = sumMax / n
		a.AvgStddev = sumStddev / n
		a.AvgMigrationPct = sumMigPct / n
		a.AvgSameP50 = sumSP50 / n
		a.AvgSameP95 = sumSP95 / n
		a.AvgSameP99 = sumSP99 / n
	}
	if a.MigrWindows > 0 {
		n := float64(a.MigrWindows)
		a.AvgMigrP50 = sumMP50 / n
		a.AvgMigrP95 = sumMP95 / n
		a.AvgMigrP99 = sumMP99 / n
	}
	return a
}
