package report

import (
	"fmt"
	"io"

	"github.com/schedlab/wakebench/internal/bench"
	"github.com/schedlab/wakebench/internal/stats"
)

// csvHeader is a fixed contract with downstream analysis; the column order
// and names never change.
const csvHeader = "timestamp,count,min_ns,p50_ns,p95_ns,p99_ns,p999_ns,max_ns,avg_ns,stddev_ns," +
	"poc_state,wakeups_per_sec,migrations,migration_pct," +
	"same_count,same_p50,same_p95,same_p99,migr_count,migr_p50,migr_p95,migr_p99"

// CSV emits one machine-readable row per window.
type CSV struct {
	out io.Writer
}

var _ bench.Renderer = (*CSV)(nil)

// NewCSV writes the header immediately so even an interrupted run yields a
// parseable file.
func NewCSV(out io.Writer) *CSV {
	fmt.Fprintln(out, csvHeader)
	return &CSV{out: out}
}

func (c *CSV) WindowTick(f bench.Frame) {
	fmt.Fprintln(c.out, csvRow(f.Current))
}

func (c *CSV) Close() {}

func csvRow(w stats.WindowStats) string {
	state := 0
	if w.FeatureOn {
		state = 1
	}
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%d,%d,%.1f,%d,%d,%d,%.1f,%d,%d,%d,%d,%d,%d,%d,%d",
		w.Offset, w.Count, w.Min, w.P50, w.P95, w.P99, w.P999, w.Max,
		w.Mean(), w.Stddev, state, w.PerSec, w.Migrations, w.MigrationPct,
		w.SameCount, w.SameP50, w.SameP95, w.SameP99,
		w.MigrCount, w.MigrP50, w.MigrP95, w.MigrP99)
}
