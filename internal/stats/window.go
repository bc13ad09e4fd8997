package stats

// WindowStats is the immutable snapshot recorded once per measurement
// window and appended to the run history.
type WindowStats struct {
	Summary

	FeatureOn bool
	Offset    uint64 // seconds since run start
	PerSec    uint64 // samples per second over the window

	Migrations   uint64
	MigrationPct float64

	SameCount uint64
	SameP50   uint64
	SameP95   uint64
	SameP99   uint64

	MigrCount uint64
	MigrP50   uint64
	MigrP95   uint64
	MigrP99   uint64
}

// NewWindowStats builds the snapshot for one window from the classified
// latency sets. Both input slices are sorted in place.
func NewWindowStats(same, migrated []uint64) WindowStats {
	total := len(same) + len(migrated)
	merged := make([]uint64, 0, total)
	merged = append(merged, same...)
	merged = append(merged, migrated...)

	w := WindowStats{Summary: Compute(merged)}
	w.Migrations = uint64(len(migrated))
	if total > 0 {
		w.MigrationPct = 100 * float64(len(migrated)) / float64(total)
	}

	w.SameCount = uint64(len(same))
	if len(same) > 0 {
		s := Compute(same)
		w.SameP50, w.SameP95, w.SameP99 = s.P50, s.P95, s.P99
	}
	w.MigrCount = uint64(len(migrated))
	if len(migrated) > 0 {
		m := Compute(migrated)
		w.MigrP50, w.MigrP95, w.MigrP99 = m.P50, m.P95, m.P99
	}
	return w
}
