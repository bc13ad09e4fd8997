package bench

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/schedlab/wakebench/internal/config"
	"github.com/schedlab/wakebench/internal/kernelctl"
	"github.com/schedlab/wakebench/internal/stats"
)

// manualPollInterval bounds the control-loop sleep in manual mode so key
// presses are noticed promptly.
const manualPollInterval = 50 * time.Millisecond

// Options wires a Runner. Control is required; Renderer and Keys may be nil.
type Options struct {
	Config   config.Config
	Control  kernelctl.Interface
	Renderer Renderer
	Keys     <-chan byte
	Log      *zap.Logger
}

// Runner owns one benchmark run: the workers, their rings, the window
// history, and the toggle state machine. Everything except the workers runs
// on the single control goroutine.
type Runner struct {
	cfg      config.Config
	ctl      kernelctl.Interface
	renderer Renderer
	keys     <-chan byte
	log      *zap.Logger

	stop    atomic.Bool
	wg      sync.WaitGroup
	workers []*worker

	dr   drainResult
	hist history
	tog  *toggler

	lifeOn  *hdrhistogram.Histogram
	lifeOff *hdrhistogram.Histogram

	hasCounters  bool
	prevCounters kernelctl.Counters

	idleStates []kernelctl.IdleState
	idlePrev   []uint64
	idleOn     []uint64
	idleOff    []uint64
}

// New builds a Runner; no external state is touched until Run.
func New(opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:      opts.Config,
		ctl:      opts.Control,
		renderer: opts.Renderer,
		keys:     opts.Keys,
		log:      log,
		tog:      newToggler(opts.Control, opts.Config, log),
		lifeOn:   newLifetimeHistogram(),
		lifeOff:  newLifetimeHistogram(),
	}
}

// Run executes the benchmark until the duration expires, the context is
// cancelled, or a quit key arrives. The pre-run feature state and any
// C-state limits are restored on every exit path, including panics.
func (r *Runner) Run(ctx context.Context) (Results, error) {
	orig, err := r.ctl.Feature()
	if err != nil {
		return Results{}, fmt.Errorf("feature control unavailable: %w", err)
	}
	defer func() {
		if err := r.restore(orig); err != nil {
			r.log.Warn("restoration incomplete", zap.Error(err))
		}
	}()

	if r.cfg.MaxCState >= 0 {
		if err := r.ctl.LimitMaxIdleState(r.cfg.MaxCState); err != nil {
			r.log.Warn("max-cstate limit not applied", zap.Int("ceiling", r.cfg.MaxCState), zap.Error(err))
		} else {
			r.log.Info("C-states limited", zap.Int("ceiling", r.cfg.MaxCState))
		}
	}

	r.hasCounters = r.ctl.CountersAvailable()
	r.idleStates = r.ctl.IdleStates()
	if !r.hasCounters {
		r.log.Info("debug counters unavailable, section omitted")
	}

	r.startWorkers()
	defer r.stopWorkers()

	if err := r.warmup(ctx); err != nil {
		return r.results(), err
	}
	// Warm-up samples never reach statistics: drain with an unbounded
	// discard horizon.
	r.drainRings(math.MaxInt64)

	if r.hasCounters {
		r.ctl.ResetCounters()
		r.prevCounters = r.ctl.ReadCounters()
	}
	if len(r.idleStates) > 0 {
		r.idlePrev = r.ctl.ReadIdleUsage()
		r.idleOn = make([]uint64, len(r.idleStates))
		r.idleOff = make([]uint64, len(r.idleStates))
	}

	startNS := nowNS()
	if err := r.tog.start(startNS); err != nil {
		return r.results(), fmt.Errorf("toggle setup: %w", err)
	}

	r.loop(ctx, startNS)
	r.stopWorkers()
	return r.results(), nil
}

func (r *Runner) loop(ctx context.Context, startNS int64) {
	windowNS := int64(r.cfg.Window)
	durationNS := int64(r.cfg.Duration)
	nextWindow := startNS + windowNS

	for {
		now := nowNS()
		if now-startNS >= durationNS || ctx.Err() != nil {
			return
		}

		if r.drainKeys(now) {
			r.log.Info("quit requested")
			return
		}
		r.tog.maybeToggle(now)

		if now >= nextWindow {
			r.windowTick(now, startNS, windowNS)
			nextWindow = now + windowNS
		}

		r.sleepUntil(ctx, nextWindow)
	}
}

// drainKeys consumes pending key presses without blocking; true means quit.
func (r *Runner) drainKeys(now int64) bool {
	if r.keys == nil {
		return false
	}
	for {
		select {
		case k, ok := <-r.keys:
			if !ok {
				return false
			}
			switch k {
			case 't', 'T':
				r.tog.requestToggle(now)
			case 'q', 'Q':
				return true
			}
		default:
			return false
		}
	}
}

func (r *Runner) windowTick(now, startNS, windowNS int64) {
	r.drainRings(r.tog.horizon.Load())

	w := stats.NewWindowStats(r.dr.same, r.dr.migr)
	w.FeatureOn = r.tog.state
	w.Offset = uint64((now - startNS) / int64(time.Second))
	w.PerSec = w.Count * uint64(time.Second) / uint64(windowNS)
	r.hist.append(w)

	frame := Frame{
		ElapsedSec: uint64((now - startNS) / int64(time.Second)),
		FeatureOn:  r.tog.state,
		Current:    w,
		Windows:    r.hist.all(),
		Toggles:    r.tog.events,
		SameLat:    r.dr.same,
		MigrLat:    r.dr.migr,
	}

	if r.hasCounters {
		cur := r.ctl.ReadCounters()
		frame.HasCounters = true
		frame.Counters = cur.Sub(r.prevCounters)
		r.prevCounters = cur
	}
	if len(r.idleStates) > 0 {
		cur := r.ctl.ReadIdleUsage()
		deltas := make([]uint64, len(cur))
		acc := r.idleOff
		if r.tog.state {
			acc = r.idleOn
		}
		for i := range cur {
			deltas[i] = cur[i] - r.idlePrev[i]
			acc[i] += deltas[i]
		}
		r.idlePrev = cur
		frame.IdleStates = r.idleStates
		frame.IdleDeltas = deltas
	}

	if r.renderer != nil {
		r.renderer.WindowTick(frame)
	}
}

// sleepUntil blocks until the next scheduled event, bounded in manual mode
// so input stays responsive.
func (r *Runner) sleepUntil(ctx context.Context, nextWindow int64) {
	deadline := nextWindow
	if nt := r.tog.next(); nt > 0 && nt < deadline {
		deadline = nt
	}
	wait := time.Duration(deadline - nowNS())
	if r.cfg.Mode == config.ModeManual && wait > manualPollInterval {
		wait = manualPollInterval
	}
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (r *Runner) warmup(ctx context.Context) error {
	if r.cfg.Warmup <= 0 {
		return nil
	}
	r.log.Info("warming up", zap.Duration("warmup", r.cfg.Warmup))
	timer := time.NewTimer(r.cfg.Warmup)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) startWorkers() {
	r.workers = make([]*worker, r.cfg.Workers)
	for i := range r.workers {
		w := newWorker(i, r.cfg.SleepTarget, r.cfg.SpinWait, r.cfg.TimerSlackNS)
		r.workers[i] = w
		r.wg.Add(1)
		go w.run(&r.stop, &r.wg)
	}
	r.log.Info("workers started",
		zap.Int("workers", r.cfg.Workers),
		zap.Duration("sleep", r.cfg.SleepTarget),
		zap.Bool("spin", r.cfg.SpinWait))
}

// stopWorkers signals and joins every worker; every worker has exited when
// it returns. Safe to call twice.
func (r *Runner) stopWorkers() {
	if r.stop.Load() {
		return
	}
	r.stop.Store(true)
	r.wg.Wait()
}

// restore puts back every piece of external state the run mutated. All
// restorations are attempted; failures are combined.
func (r *Runner) restore(orig kernelctl.FeatureState) error {
	var err error
	if orig != kernelctl.FeatureUnknown {
		err = multierr.Append(err, r.ctl.SetFeature(orig == kernelctl.FeatureOn))
	}
	err = multierr.Append(err, r.ctl.RestoreIdleStates())
	return err
}

func (r *Runner) results() Results {
	res := Results{
		History:     r.hist.all(),
		Toggles:     r.tog.events,
		LifetimeOn:  r.lifeOn,
		LifetimeOff: r.lifeOff,
		HasCounters: r.hasCounters,
		IdleStates:  r.idleStates,
	}
	if r.hasCounters {
		res.CountersTotal = r.ctl.ReadCounters()
	}
	if len(r.idleStates) > 0 {
		res.IdleOnTotals = r.idleOn
		res.IdleOffTotals = r.idleOff
	}
	return res
}
