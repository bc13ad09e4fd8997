// Package report renders the live views (dashboard, stream, CSV) and the
// end-of-run comparison. All terminal-control concerns stay here; the bench
// core only hands over immutable frames.
package report

import "fmt"

// Version is the benchmark's own version string, shown in the header.
const Version = "1.0.0"

const (
	ansiReset      = "\033[0m"
	ansiBold       = "\033[1m"
	ansiDim        = "\033[2m"
	ansiGreen      = "\033[32m"
	ansiRed        = "\033[31m"
	ansiYellow     = "\033[33m"
	ansiHome       = "\033[H"
	ansiClear      = "\033[2J"
	ansiEraseBelow = "\033[J"
	ansiHideCursor = "\033[?25l"
	ansiShowCursor = "\033[?25h"
)

// FormatNS renders a nanosecond value at a human scale.
func FormatNS(ns uint64) string {
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%d ns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.1f us", float64(ns)/1_000)
	default:
		return fmt.Sprintf("%.2f ms", float64(ns)/1_000_000)
	}
}

func formatElapsed(sec uint64) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func onOff(enabled bool) string {
	if enabled {
		return "ON "
	}
	return "OFF"
}
