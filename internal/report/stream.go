package report

import (
	"fmt"
	"io"

	"github.com/schedlab/wakebench/internal/bench"
)

// Stream logs one plain line per window, for non-TTY runs and log capture.
type Stream struct {
	out io.Writer
}

var _ bench.Renderer = (*Stream)(nil)

func NewStream(out io.Writer) *Stream {
	return &Stream{out: out}
}

func (s *Stream) WindowTick(f bench.Frame) {
	w := f.Current
	fmt.Fprintf(s.out, "[%3ds] POC=%s  p50=%s  p99=%s  migr=%.1f%%  wakeups=%d/s\n",
		w.Offset, onOff(w.FeatureOn), FormatNS(w.P50), FormatNS(w.P99),
		w.MigrationPct, w.PerSec)
}

func (s *Stream) Close() {}
