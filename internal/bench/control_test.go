package bench

import (
	"errors"
	"sync"

	"github.com/schedlab/wakebench/internal/kernelctl"
)

var errWriteFailed = errors.New("write failed")

// fakeControl is an in-memory kernelctl.Interface for tests. The mutex keeps
// the race detector quiet when Run's deferred restore overlaps assertions.
type fakeControl struct {
	mu       sync.Mutex
	enabled  bool
	setErr   error
	sets     []bool
	counters kernelctl.Counters
	idle     []kernelctl.IdleState
	usage    []uint64
	limited  int
	restored bool
}

var _ kernelctl.Interface = (*fakeControl)(nil)

func newFakeControl(enabled bool) *fakeControl {
	return &fakeControl{enabled: enabled, limited: -1}
}

func (f *fakeControl) Feature() (kernelctl.FeatureState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enabled {
		return kernelctl.FeatureOn, nil
	}
	return kernelctl.FeatureOff, nil
}

func (f *fakeControl) SetFeature(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.enabled = on
	f.sets = append(f.sets, on)
	return nil
}

func (f *fakeControl) Version() string { return "test" }

func (f *fakeControl) CountersAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters != (kernelctl.Counters{})
}

func (f *fakeControl) ReadCounters() kernelctl.Counters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters
}

func (f *fakeControl) ResetCounters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = kernelctl.Counters{}
}

func (f *fakeControl) IdleStates() []kernelctl.IdleState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle
}

func (f *fakeControl) ReadIdleUsage() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.usage))
	copy(out, f.usage)
	return out
}

func (f *fakeControl) LimitMaxIdleState(ceiling int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limited = ceiling
	return nil
}

func (f *fakeControl) RestoreIdleStates() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored = true
	return nil
}

func (f *fakeControl) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

func (f *fakeControl) current() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}
