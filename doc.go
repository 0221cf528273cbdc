// Package hwbench qualifies hardware sensors under controlled synthetic load.
//
// # Overview
//
// A test samples one sensor (or a family of sensors) once per interval for a
// fixed number of samples, keeps running statistics and decides PASS or
// FAIL against a target value and tolerance. CPU clock and load tests need
// the processor busy at a known level first, so hwbench runs one busy-work
// worker per logical CPU and steers their effort with a feedback controller
// until the measured CPU usage sits near the requested percentage.
//
// # Architecture
//
// The package components:
//
//   - controller.go - LoadController, the shared feedback state
//   - workload.go   - the bounded busy-work unit
//   - pool.go       - per-core load workers and the usage sampler
//   - tester.go     - Tester, the per-second run loop
//   - results.go    - running statistics and the verdict
//   - source_*.go   - sensor backends (OS counters, scripted replay)
//   - report.go     - banner and summary text
//   - config.go     - YAML bench plans
//   - metrics.go    - Prometheus collectors for a run
//   - assertions.go - test helpers for verdicts and convergence
//
// # Quick Start
//
// Check that the CPU clock holds 3000 MHz ± 500 for 30 seconds at 80% load:
//
//	src := hwbench.NewOSSource(logger)
//	t := hwbench.NewTester(src, hwbench.HardwareCPU, hwbench.SensorClock, hwbench.Params{
//	    Duration:  30,
//	    Target:    3000,
//	    Tolerance: 500,
//	    Load:      80,
//	    Mode:      hwbench.ModeCheck,
//	}, hwbench.WithLogger(logger))
//
//	results, err := t.Run(ctx)
//	fmt.Print(t.Report().Summary())
//	if err != nil {
//	    os.Exit(1)
//	}
//	_ = results.Verdict // PASS or FAIL
//
// # The Load Controller
//
// Worker 0 samples whole-system CPU usage about every 100ms and retunes the
// per-tick work amount shared by all workers:
//
//	|target - measured| ≤ 5      hold
//	measured ≥ 100               hold (saturated, usage says nothing)
//	measured < target            work_units × 1.1
//	measured > target            work_units × 0.9
//
// The work amount starts at 100000 units and never drops below
// MinWorkUnits, so a long stretch of background load cannot leave the
// pool idle for the rest of the run. Workers exit on their own once the
// controller is stopped; Run joins them before it returns.
//
// # Verdict
//
// In check mode a reading outside [target - tolerance, target + tolerance]
// is a violation. The third violation aborts the run with a
// *ThresholdError. A run that ends normally with at least one sample
// passes. Print and data modes never fail on range.
//
// # Testing
//
// Drive a Tester from a scripted source and assert the outcome:
//
//	func TestFanHolds(t *testing.T) {
//	    src := hwbench.NewReplaySource(1200, 1210, 1195)
//	    tester := hwbench.NewTester(src, hwbench.HardwareMainboard, hwbench.SensorFan, params)
//	    results, _ := tester.Run(context.Background())
//
//	    hwbench.AssertVerdict(t, results, hwbench.VerdictPass)
//	    hwbench.AssertWithinTolerance(t, results, params)
//	}
//
// # See Also
//
//   - cmd/hwbench - command line front end
package hwbench
