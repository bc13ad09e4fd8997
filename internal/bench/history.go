package bench

import "github.com/schedlab/wakebench/internal/stats"

// historyCap bounds the retained windows (an hour at 1s windows). Windows
// past the cap still render live; they just don't feed the final report.
const historyCap = 3600

// history is the append-only window log. Only the control loop touches it,
// so no synchronization is needed.
type history struct {
	windows []stats.WindowStats
}

func (h *history) append(w stats.WindowStats) {
	if len(h.windows) < historyCap {
		h.windows = append(h.windows, w)
	}
}

func (h *history) all() []stats.WindowStats {
	return h.windows
}
