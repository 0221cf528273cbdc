package hwbench

import (
	"math"
	"sync/atomic"
)

const (
	// DefaultWorkUnits is the busy-work iteration count a fresh controller
	// hands to each worker per tick.
	DefaultWorkUnits uint64 = 100_000

	// MinWorkUnits is the floor for scaled work units. At this size a
	// ×1.1 step still adds iterations, so the pool can always recover.
	MinWorkUnits uint64 = 100

	// DeadBand is the load error (percentage points) tolerated before the
	// controller rescales work units.
	DeadBand = 5

	// SaturatedLoad is the measured load at which retuning is skipped.
	// At 100% the error signal is clipped, so scaling would run away.
	SaturatedLoad = 100

	ScaleUp   = 1.1 // under target
	ScaleDown = 0.9 // over target
)

// LoadController is the feedback state shared between the test run loop
// and every load worker.
//
// Control loop (bang-bang with dead-band):
//   - target load is set once at test setup
//   - the sampling worker stores the measured system load every tick
//   - if |target - measured| > DeadBand, work units are scaled ×1.1 or ×0.9
//   - measured == 100 leaves work units untouched (saturation guard)
//
// Fields are independent atomics; no update needs two of them to change
// together, so there is no lock.
type LoadController struct {
	target    atomic.Uint64 // 0..100
	measured  atomic.Uint64 // 0..100
	workUnits atomic.Uint64
	running   atomic.Bool
	totalWork atomic.Uint64
}

// NewLoadController creates a stopped controller with the given target load.
func NewLoadController(target float64) *LoadController {
	c := &LoadController{}
	c.workUnits.Store(DefaultWorkUnits)
	c.SetTarget(target)
	return c
}

// SetTarget stores the desired load, clamped to [0,100].
func (c *LoadController) SetTarget(load float64) {
	c.target.Store(clampPercent(load))
}

// RecordAndRetune stores the measured whole-system load and adjusts the
// work units toward the target.
func (c *LoadController) RecordAndRetune(load float64) {
	measured := clampPercent(load)
	c.measured.Store(measured)
	if measured == SaturatedLoad {
		return
	}

	target := c.target.Load()
	diff := int64(target) - int64(measured)
	if diff <= DeadBand && diff >= -DeadBand {
		return
	}

	units := c.workUnits.Load()
	if measured < target {
		c.workUnits.Store(scaleUnits(units, ScaleUp))
	} else {
		c.workUnits.Store(scaleUnits(units, ScaleDown))
	}
}

// Start marks the controller as running. Workers exit once it is stopped.
func (c *LoadController) Start() { c.running.Store(true) }

// Stop clears the running flag. Callers must still join the workers.
func (c *LoadController) Stop() { c.running.Store(false) }

// Running reports whether workers should keep producing load.
func (c *LoadController) Running() bool { return c.running.Load() }

// TargetLoad returns the requested load percent.
func (c *LoadController) TargetLoad() uint64 { return c.target.Load() }

// MeasuredLoad returns the last whole-system load seen by the sampler.
func (c *LoadController) MeasuredLoad() uint64 { return c.measured.Load() }

// WorkUnits returns the busy-work iterations per worker tick.
func (c *LoadController) WorkUnits() uint64 { return c.workUnits.Load() }

// TotalWorkDone returns the iterations completed by all workers so far.
func (c *LoadController) TotalWorkDone() uint64 { return c.totalWork.Load() }

func (c *LoadController) addWork(n uint64) { c.totalWork.Add(n) }

// Statistics returns a snapshot of the controller state.
func (c *LoadController) Statistics() map[string]interface{} {
	return map[string]interface{}{
		"target_load":     c.TargetLoad(),
		"measured_load":   c.MeasuredLoad(),
		"work_units":      c.WorkUnits(),
		"running":         c.Running(),
		"total_work_done": c.TotalWorkDone(),
	}
}

func clampPercent(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	}
	return uint64(v)
}

// scaleUnits multiplies n by factor, saturating instead of wrapping and
// never going below MinWorkUnits.
func scaleUnits(n uint64, factor float64) uint64 {
	scaled := float64(n) * factor
	switch {
	case scaled >= math.MaxUint64:
		return math.MaxUint64
	case scaled < float64(MinWorkUnits):
		return MinWorkUnits
	}
	return uint64(scaled)
}
