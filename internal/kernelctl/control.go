package kernelctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const (
	// FeaturePath is the sysctl toggling the idle-CPU selector.
	FeaturePath = "/proc/sys/kernel/sched_poc_selector"

	versionPath = "/sys/kernel/poc_selector/status/version"

	counterHitPath   = "/sys/kernel/poc_selector/counters/hit"
	counterFallPath  = "/sys/kernel/poc_selector/counters/fallthrough"
	counterL2Path    = "/sys/kernel/poc_selector/counters/l2_hit"
	counterLLCPath   = "/sys/kernel/poc_selector/counters/llc_hit"
	counterResetPath = "/sys/kernel/poc_selector/counters/reset"

	maxIdleStates = 8
)

func idlePath(cpu, state int, file string) string {
	return fmt.Sprintf("/sys/devices/system/cpu/cpu%d/cpuidle/state%d/%s", cpu, state, file)
}

// Sysfs is the real control surface. Not safe for concurrent use; the
// benchmark drives it from the control loop only.
type Sysfs struct {
	nrCPUs int
	states []IdleState

	savedDisable []int
	limited      bool
}

var _ Interface = (*Sysfs)(nil)

// New probes the cpuidle catalog once and returns the control surface.
func New(nrCPUs int) *Sysfs {
	s := &Sysfs{nrCPUs: nrCPUs}
	for i := 0; i < maxIdleStates; i++ {
		name, err := readString(idlePath(0, i, "name"))
		if err != nil {
			break
		}
		lat, _ := readInt(idlePath(0, i, "latency"))
		s.states = append(s.states, IdleState{Name: name, LatencyUS: lat})
	}
	return s
}

func (s *Sysfs) Feature() (FeatureState, error) {
	v, err := readInt(FeaturePath)
	if err != nil {
		return FeatureUnknown, fmt.Errorf("read %s: %w", FeaturePath, err)
	}
	if v > 0 {
		return FeatureOn, nil
	}
	return FeatureOff, nil
}

func (s *Sysfs) SetFeature(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := writeInt(FeaturePath, v); err != nil {
		return fmt.Errorf("write %s: %w", FeaturePath, err)
	}
	return nil
}

func (s *Sysfs) Version() string {
	v, err := readString(versionPath)
	if err != nil {
		return "N/A"
	}
	return v
}

func (s *Sysfs) CountersAvailable() bool {
	_, err := readString(counterHitPath)
	return err == nil
}

func (s *Sysfs) ReadCounters() Counters {
	return Counters{
		Hit:         readUint(counterHitPath),
		Fallthrough: readUint(counterFallPath),
		L2Hit:       readUint(counterL2Path),
		LLCHit:      readUint(counterLLCPath),
	}
}

func (s *Sysfs) ResetCounters() {
	_ = writeInt(counterResetPath, 1)
}

func (s *Sysfs) IdleStates() []IdleState {
	return s.states
}

func (s *Sysfs) ReadIdleUsage() []uint64 {
	usage := make([]uint64, len(s.states))
	for st := range s.states {
		for cpu := 0; cpu < s.nrCPUs; cpu++ {
			usage[st] += readUint(idlePath(cpu, st, "usage"))
		}
	}
	return usage
}

func (s *Sysfs) LimitMaxIdleState(ceiling int) error {
	if len(s.states) == 0 {
		return fmt.Errorf("no cpuidle states detected")
	}

	// Pre-limit disable values come from cpu0 and stand in for all CPUs.
	s.savedDisable = make([]int, len(s.states))
	for st := range s.states {
		v, err := readInt(idlePath(0, st, "disable"))
		if err != nil {
			v = -1
		}
		s.savedDisable[st] = v
	}

	for cpu := 0; cpu < s.nrCPUs; cpu++ {
		for st := range s.states {
			v := 0
			if st > ceiling {
				v = 1
			}
			if err := writeInt(idlePath(cpu, st, "disable"), v); err != nil {
				return fmt.Errorf("limit cpu%d state%d: %w", cpu, st, err)
			}
		}
	}
	s.limited = true
	return nil
}

func (s *Sysfs) RestoreIdleStates() error {
	if !s.limited {
		return nil
	}
	var firstErr error
	for cpu := 0; cpu < s.nrCPUs; cpu++ {
		for st := range s.states {
			if s.savedDisable[st] < 0 {
				continue
			}
			if err := writeInt(idlePath(cpu, st, "disable"), s.savedDisable[st]); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("restore cpu%d state%d: %w", cpu, st, err)
			}
		}
	}
	s.limited = false
	return firstErr
}

// SetTimerSlack sets the calling thread's timer slack. Workers call it after
// locking their OS thread so the slack applies to their own sleeps only.
func SetTimerSlack(ns int64) error {
	return unix.Prctl(unix.PR_SET_TIMERSLACK, uintptr(ns), 0, 0, 0)
}
