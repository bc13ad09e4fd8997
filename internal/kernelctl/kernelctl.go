// Package kernelctl wraps the sysctl/sysfs control surface of the idle-CPU
// selector under test: the feature flag itself, its debug counters, and the
// cpuidle state catalog. The benchmark core consumes only the Interface so
// tests can substitute an in-memory fake.
package kernelctl

// FeatureState is the tri-state answer of a feature flag read.
type FeatureState int

const (
	FeatureOff FeatureState = iota
	FeatureOn
	FeatureUnknown
)

func (s FeatureState) String() string {
	switch s {
	case FeatureOff:
		return "off"
	case FeatureOn:
		return "on"
	}
	return "unknown"
}

// Counters are the selector's monotonic debug counters; callers compute
// deltas themselves.
type Counters struct {
	Hit         uint64
	Fallthrough uint64
	L2Hit       uint64
	LLCHit      uint64
}

// Sub returns the per-field difference c - prev.
func (c Counters) Sub(prev Counters) Counters {
	return Counters{
		Hit:         c.Hit - prev.Hit,
		Fallthrough: c.Fallthrough - prev.Fallthrough,
		L2Hit:       c.L2Hit - prev.L2Hit,
		LLCHit:      c.LLCHit - prev.LLCHit,
	}
}

// IdleState describes one cpuidle state as advertised for cpu0.
type IdleState struct {
	Name      string
	LatencyUS int
}

// Interface is the kernel control capability consumed by the benchmark core.
type Interface interface {
	// Feature reads the flag; FeatureUnknown with a non-nil error means the
	// control file is absent or unreadable.
	Feature() (FeatureState, error)
	SetFeature(on bool) error
	// Version reports the selector version string, "N/A" when unavailable.
	Version() string

	CountersAvailable() bool
	ReadCounters() Counters
	ResetCounters()

	// IdleStates returns the cpuidle catalog; empty when cpuidle is absent.
	IdleStates() []IdleState
	// ReadIdleUsage sums per-state usage counters across all CPUs, indexed
	// like IdleStates.
	ReadIdleUsage() []uint64

	// LimitMaxIdleState disables every state deeper than ceiling on all
	// CPUs, saving the previous disable values.
	LimitMaxIdleState(ceiling int) error
	// RestoreIdleStates undoes LimitMaxIdleState; a no-op when no limit was
	// applied.
	RestoreIdleStates() error
}
