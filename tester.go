package hwbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Mode selects what a run does with its readings.
type Mode string

const (
	ModeCheck Mode = "check" // enforce target ± tolerance
	ModePrint Mode = "print" // report only
	ModeData  Mode = "data"  // report only; the caller wants the latest raw reading
)

// ParseMode accepts check, print or data.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeCheck, ModePrint, ModeData:
		return m, nil
	}
	return "", fmt.Errorf("task must be check, print or data, got %q", s)
}

// Params are the immutable parameters of one run.
type Params struct {
	Duration  int           // number of samples (seconds at the default interval)
	Target    float64       // expected sensor value
	Tolerance float64       // allowed deviation either side of Target
	Load      float64       // synthetic CPU load percent (CPU clock/load tests only)
	Interval  time.Duration // delay before each sample (0 = 1s)
	Mode      Mode
	Full      bool // include per-reading min/max/identifier and std deviation
}

// Range returns the allowed interval [Target-Tolerance, Target+Tolerance].
func (p Params) Range() (lo, hi float64) {
	return p.Target - p.Tolerance, p.Target + p.Tolerance
}

// State is the run loop lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a Tester.
type Option func(*Tester)

// WithLogger sets the logger for the run loop and the load workers.
func WithLogger(l *slog.Logger) Option { return func(t *Tester) { t.logger = l } }

// WithMetrics records the run into m.
func WithMetrics(m *Metrics) Option { return func(t *Tester) { t.metrics = m } }

// WithPool overrides the load worker configuration.
func WithPool(cfg PoolConfig) Option { return func(t *Tester) { t.pool = cfg } }

// WithSourceName labels the results with the backend name.
func WithSourceName(name string) Option { return func(t *Tester) { t.sourceName = name } }

// Tester runs one hardware test: it drives the synthetic load, samples
// the source once per interval and decides PASS/FAIL.
//
// A Tester is single use. Run is not safe for concurrent use; only the
// LoadController is shared with the workers.
type Tester struct {
	Params   Params
	Hardware HardwareType
	Sensor   SensorType

	source     Source
	sourceName string
	ctrl       *LoadController
	pool       PoolConfig
	logger     *slog.Logger
	metrics    *Metrics

	results *TestResults
	state   State
}

// NewTester prepares a run of hw/st against src.
func NewTester(src Source, hw HardwareType, st SensorType, p Params, opts ...Option) *Tester {
	if p.Interval <= 0 {
		p.Interval = time.Second
	}
	t := &Tester{
		Params:     p,
		Hardware:   hw,
		Sensor:     st,
		source:     src,
		sourceName: "custom",
		ctrl:       NewLoadController(p.Load),
		pool:       PoolConfig{Pin: true},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.pool.Logger == nil {
		t.pool.Logger = t.logger
	}
	t.results = NewTestResults(t.sourceName, hw, st)
	return t
}

// Controller returns the load controller shared with the workers.
func (t *Tester) Controller() *LoadController { return t.ctrl }

// Results returns the live results; they are final once Run returns.
func (t *Tester) Results() *TestResults { return t.results }

// State returns the run lifecycle state.
func (t *Tester) State() State { return t.state }

// Report renders the results of this run.
func (t *Tester) Report() Report { return Report{Params: t.Params, Results: t.results} }

// Run executes the test. It always returns the results; the verdict is
// set on every path. A non-nil error means FAIL.
//
// The load workers are stopped and joined before Run returns, on the
// error path too.
func (t *Tester) Run(ctx context.Context) (*TestResults, error) {
	if t.state != StateIdle {
		return t.results, fmt.Errorf("tester already %s", t.state)
	}
	r := t.results
	r.StartedAt = time.Now()

	needsLoad := NeedsSyntheticLoad(t.Hardware, t.Sensor)
	t.ctrl.SetTarget(t.Params.Load)
	if needsLoad && t.ctrl.TargetLoad() == 0 {
		err := fmt.Errorf("%s %s: %w", t.Hardware, t.Sensor, ErrZeroLoad)
		t.state = StateAborted
		t.finish(err)
		return r, err
	}

	t.ctrl.Start()
	var pool *LoadPool
	if needsLoad {
		cfg := t.pool
		if cfg.Usage == nil {
			cfg.Usage = NewSystemUsage()
		}
		pool = SpawnLoad(t.ctrl, cfg)
		t.logger.Info("synthetic load started",
			"hardware", t.Hardware,
			"sensor", t.Sensor,
			"workers", pool.Workers(),
			"target_load", t.ctrl.TargetLoad())
	}
	t.state = StateRunning

	runErr := t.loop(ctx)

	t.ctrl.Stop()
	var joinErr error
	if pool != nil {
		joinErr = pool.Join()
	}
	t.metrics.observeController(t.ctrl)

	err := errors.Join(runErr, joinErr)
	if err == nil && t.Params.Mode == ModeCheck && r.Samples == 0 {
		t.state = StateCompleted
		err = fmt.Errorf("%s %s: %w", t.Hardware.DisplayName(), t.Sensor.DisplayName(), ErrNoSamples)
		t.finish(err)
		return r, err
	}
	if err != nil {
		t.state = StateAborted
	} else {
		t.state = StateCompleted
	}
	t.finish(err)
	return r, err
}

// finish assigns the verdict. err == nil means PASS.
func (t *Tester) finish(err error) {
	r := t.results
	r.FinishedAt = time.Now()
	if err != nil && r.Verdict != VerdictFail {
		r.Fail(err.Error())
	}
	r.Pass()
	t.metrics.observeVerdict(r.Verdict)

	t.logger.Debug("test finished",
		"state", t.state,
		"verdict", r.Verdict,
		"samples", r.Samples,
		"errors", r.ErrorCount)
}

func (t *Tester) loop(ctx context.Context) error {
	timer := time.NewTimer(t.Params.Interval)
	defer timer.Stop()

	for i := 0; i < t.Params.Duration; i++ {
		if i > 0 {
			timer.Reset(t.Params.Interval)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		sensors, err := t.source.Query(ctx, t.Hardware, t.Sensor)
		if err == nil && len(sensors) == 0 {
			err = fmt.Errorf("%w: %s %s returned no readings", ErrDataUnavailable, t.Hardware, t.Sensor)
		}
		if err != nil {
			t.metrics.observeQueryError()
			if !errors.Is(err, ErrDataUnavailable) {
				err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
			}
			if t.Params.Mode == ModeCheck {
				return err
			}
			t.logger.Warn("sensor query failed, sample skipped", "second", i+1, "error", err)
			continue
		}

		if err := t.record(i, sensors); err != nil {
			return err
		}
	}
	return nil
}

// record feeds one query's readings into the results and applies the
// check-mode threshold.
func (t *Tester) record(sec int, sensors []Sensor) error {
	r := t.results
	p := t.Params
	check := p.Mode == ModeCheck
	lo, hi := p.Range()

	for _, s := range sensors {
		r.Update(s.Name, s.Value, float64(t.ctrl.MeasuredLoad()))
		if s.Data != "" {
			r.Data = s.Data
		} else {
			r.Data = formatValue(r.Avg)
		}
		t.metrics.observeSample(s)

		attrs := []any{"second", sec + 1, "sensor", s.Name, "value", s.Value, "unit", s.UnitLabel()}
		if p.Full {
			attrs = append(attrs, "min", s.Min, "max", s.Max, "id", s.Identifier)
		}
		if check {
			attrs = append(attrs, "tolerance", p.Tolerance)
		}
		t.logger.Info(t.Hardware.DisplayName(), attrs...)

		if !check || !OutOfRange(s.Value, p.Target, p.Tolerance) {
			continue
		}
		t.metrics.observeViolation()
		tripped := r.RecordViolation()
		t.logger.Warn("reading out of allowed range",
			"sensor", s.Name,
			"value", s.Value,
			"range_lo", lo,
			"range_hi", hi,
			"violations", r.ErrorCount)
		if tripped {
			terr := &ThresholdError{
				Hardware:  t.Hardware,
				Sensor:    s.Name,
				Data:      r.Data,
				Value:     s.Value,
				Target:    p.Target,
				Tolerance: p.Tolerance,
				Unit:      s.UnitLabel(),
				Count:     r.ErrorCount,
			}
			r.Fail(terr.Error())
			return terr
		}
	}

	t.logger.Info("running average",
		"avg", r.Avg,
		"unit", t.Sensor.Unit(),
		"load", r.Load.Avg,
		"data", r.Data)
	t.metrics.observeController(t.ctrl)
	return nil
}
