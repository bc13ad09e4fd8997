// Package bench runs the measurement: worker threads generating wakeup
// samples, the control loop draining them into windowed statistics, and the
// feature-toggle state machine.
package bench

import "time"

// RingCapacity is the per-worker sample queue size.
const RingCapacity = 1 << 16

// Sample is one wakeup measurement. Immutable once pushed; the worker owns
// it until Push copies it into the ring slot.
type Sample struct {
	Latency   uint64 // ns the wakeup overshot its target sleep, clamped to >= 0
	Timestamp int64  // run-clock ns at the end of the sleep
	CPUBefore int32
	CPUAfter  int32
}

// The run clock: nanoseconds since process start on the monotonic clock.
// All timestamps, horizons and deadlines inside the benchmark use it so that
// wall-clock jumps cannot reorder samples against the grace horizon.
var epoch = time.Now()

func nowNS() int64 {
	return int64(time.Since(epoch))
}
