package bench

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/schedlab/wakebench/internal/config"
	"github.com/schedlab/wakebench/internal/kernelctl"
)

// ToggleEvent records a feature flip for display annotation.
type ToggleEvent struct {
	Offset  uint64 // seconds since run start, rounded up to the next window
	Enabled bool
}

const maxToggleEvents = 256

// toggler is the feature-flag state machine. ab forces ON then one flip to
// OFF at the midpoint; auto inverts on a fixed interval; manual inverts on
// request. Every flip writes the flag, records an event, and pushes the
// discard horizon forward by the grace period.
type toggler struct {
	ctl   kernelctl.Interface
	log   *zap.Logger
	mode  config.Mode
	grace time.Duration

	intervalNS int64
	durationNS int64
	startNS    int64

	state        bool
	nextToggleNS int64 // 0 = nothing scheduled
	events       []ToggleEvent

	// horizon is atomic only for visibility discipline: the control loop is
	// its sole reader and writer.
	horizon atomic.Int64
}

func newToggler(ctl kernelctl.Interface, cfg config.Config, log *zap.Logger) *toggler {
	return &toggler{
		ctl:        ctl,
		log:        log,
		mode:       cfg.Mode,
		grace:      cfg.Grace,
		intervalNS: int64(cfg.ToggleInterval),
		durationNS: int64(cfg.Duration),
	}
}

// start applies the mode's initial policy at run start.
func (t *toggler) start(startNS int64) error {
	t.startNS = startNS
	switch t.mode {
	case config.ModeAB:
		if err := t.ctl.SetFeature(true); err != nil {
			return err
		}
		t.state = true
		t.nextToggleNS = startNS + t.durationNS/2
	case config.ModeAuto:
		st, err := t.ctl.Feature()
		if err != nil {
			return err
		}
		t.state = st == kernelctl.FeatureOn
		t.nextToggleNS = startNS + t.intervalNS
	case config.ModeManual:
		st, err := t.ctl.Feature()
		if err != nil {
			return err
		}
		t.state = st == kernelctl.FeatureOn
	}
	return nil
}

// maybeToggle fires any due scheduled flip.
func (t *toggler) maybeToggle(now int64) {
	if t.nextToggleNS == 0 || now < t.nextToggleNS {
		return
	}
	if t.mode == config.ModeAB {
		t.flip(now, false)
		t.nextToggleNS = 0 // terminal: ab flips exactly once
		return
	}
	t.flip(now, !t.state)
	t.nextToggleNS = now + t.intervalNS
}

// requestToggle serves a manual key press.
func (t *toggler) requestToggle(now int64) {
	t.flip(now, !t.state)
}

// next returns the run-clock deadline of the pending scheduled flip, 0 if none.
func (t *toggler) next() int64 {
	return t.nextToggleNS
}

func (t *toggler) flip(now int64, to bool) {
	if err := t.ctl.SetFeature(to); err != nil {
		t.log.Warn("feature flag write failed", zap.Bool("enabled", to), zap.Error(err))
	}
	t.state = to
	t.horizon.Store(now + int64(t.grace))
	if len(t.events) < maxToggleEvents {
		t.events = append(t.events, ToggleEvent{
			Offset:  uint64((now-t.startNS)/int64(time.Second)) + 1,
			Enabled: to,
		})
	}
	t.log.Info("feature toggled", zap.Bool("enabled", to))
}
