package bench

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/schedlab/wakebench/internal/kernelctl"
	"github.com/schedlab/wakebench/internal/ring"
)

// worker generates wakeup samples: sleep for the target duration, measure
// how late the wakeup was, note whether the scheduler moved us. One worker
// owns exactly one ring as its producer.
type worker struct {
	id      int
	ring    *ring.Ring[Sample]
	target  time.Duration
	spin    bool
	slackNS int64 // -1 = leave the system default
}

func newWorker(id int, target time.Duration, spin bool, slackNS int64) *worker {
	return &worker{
		id:      id,
		ring:    ring.New[Sample](RingCapacity),
		target:  target,
		spin:    spin,
		slackNS: slackNS,
	}
}

// run loops until stop is observed. It locks the goroutine to an OS thread
// so the CPU ids are meaningful and the timer slack applies to this thread's
// sleeps alone. Dropped samples (full ring) are not errors.
func (w *worker) run(stop *atomic.Bool, wg *sync.WaitGroup) {
	defer wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if w.slackNS >= 0 {
		_ = kernelctl.SetTimerSlack(w.slackNS)
	}

	targetNS := int64(w.target)
	for !stop.Load() {
		before, _, _ := getcpu()
		start := nowNS()
		if w.spin {
			// Spin-poll the clock: no scheduler, no timer wheel. The
			// latency then isolates clock and migration effects.
			deadline := start + targetNS
			for nowNS() < deadline {
			}
		} else {
			time.Sleep(w.target)
		}
		end := nowNS()
		after, _, _ := getcpu()

		var latency uint64
		if elapsed := end - start; elapsed > targetNS {
			latency = uint64(elapsed - targetNS)
		}
		w.ring.Push(Sample{
			Latency:   latency,
			Timestamp: end,
			CPUBefore: int32(before),
			CPUAfter:  int32(after),
		})
	}
}

// getcpu mirrors sched_getcpu(3). x/sys/unix exposes only the SYS_GETCPU
// syscall number, not a wrapper, so invoke the raw syscall directly.
func getcpu() (cpu, node int, err error) {
	var c, n uint32
	if _, _, errno := unix.RawSyscall(unix.SYS_GETCPU, uintptr(unsafe.Pointer(&c)), uintptr(unsafe.Pointer(&n)), 0); errno != 0 {
		return 0, 0, errno
	}
	return int(c), int(n), nil
}
