package hwbench

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable: the sensor source returned an error or no data.
	// Fatal in check mode only.
	ErrDataUnavailable = errors.New("sensor data unavailable")

	// ErrThresholdExceeded: more than MaxViolations samples fell outside
	// the allowed range.
	ErrThresholdExceeded = errors.New("threshold exceeded")

	// ErrWorkerJoin: a load worker did not exit cleanly. The residual CPU
	// load is unknown, so the run is void.
	ErrWorkerJoin = errors.New("load worker join failed")

	// ErrNoSamples: check mode ran to completion without a single sample.
	ErrNoSamples = errors.New("no samples collected")

	ErrZeroLoad        = errors.New("synthetic load requested with target load 0")
	ErrUnknownHardware = errors.New("unknown hardware type")
	ErrUnknownSensor   = errors.New("unknown sensor type")
)

// ThresholdError describes the sample that tripped the failure threshold.
type ThresholdError struct {
	Hardware  HardwareType
	Sensor    string // reading name, e.g. "CPU Core #1"
	Data      string
	Value     float64
	Target    float64
	Tolerance float64
	Unit      string
	Count     int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf(
		"%s test failed:\n"+
			"  - reading: %s\n"+
			"  - data: %s\n"+
			"  - current: %.1f %s\n"+
			"  - target: %.1f %s\n"+
			"  - tolerance: ±%.1f\n"+
			"  - allowed range: %.1f ~ %.1f %s\n"+
			"  - violations: %d",
		e.Hardware.DisplayName(),
		e.Sensor,
		e.Data,
		e.Value, e.Unit,
		e.Target, e.Unit,
		e.Tolerance,
		e.Target-e.Tolerance, e.Target+e.Tolerance, e.Unit,
		e.Count,
	)
}

func (e *ThresholdError) Unwrap() error { return ErrThresholdExceeded }

// WorkerJoinError reports a load worker that panicked.
type WorkerJoinError struct {
	Worker int
	Panic  interface{}
}

func (e *WorkerJoinError) Error() string {
	return fmt.Sprintf("load worker %d: %v", e.Worker, e.Panic)
}

func (e *WorkerJoinError) Unwrap() error { return ErrWorkerJoin }
