package hwbench

import (
	"fmt"
	"math"
	"testing"
	"time"
)

// StatsExpectation describes the statistics a run should have produced.
type StatsExpectation struct {
	Samples int
	Min     float64
	Max     float64
	Avg     float64
	Epsilon float64 // allowed absolute error on Min/Max/Avg (0 = exact)
}

// AssertVerdict fails the test unless the run ended with want.
func AssertVerdict(t *testing.T, r *TestResults, want Verdict) {
	t.Helper()

	if r == nil {
		t.Fatalf("No results")
	}
	if r.Verdict != want {
		t.Errorf("Verdict = %q, want %q\nreason: %s", r.Verdict, want, r.Reason)
		return
	}
	t.Logf("✓ Verdict %s after %d samples (%d violations)", r.Verdict, r.Samples, r.ErrorCount)
}

// AssertStats compares sample count and min/max/avg against want.
func AssertStats(t *testing.T, r *TestResults, want StatsExpectation) {
	t.Helper()

	var failures []string
	if r.Samples != want.Samples {
		failures = append(failures, fmt.Sprintf("  samples=%d (want %d)", r.Samples, want.Samples))
	}
	check := func(name string, got, exp float64) {
		if math.Abs(got-exp) > want.Epsilon {
			failures = append(failures, fmt.Sprintf("  %s=%.3f (want %.3f ±%.3f)", name, got, exp, want.Epsilon))
		}
	}
	check("min", r.Min, want.Min)
	check("max", r.Max, want.Max)
	check("avg", r.Avg, want.Avg)

	if len(failures) > 0 {
		t.Errorf("Statistics mismatch:\n%s", failures)
	}
}

// AssertWithinTolerance verifies every recorded sample lies in the
// allowed range of p.
//
//	target - tolerance ≤ x ≤ target + tolerance   for all samples x
func AssertWithinTolerance(t *testing.T, r *TestResults, p Params) {
	t.Helper()

	lo, hi := p.Range()
	var failures []string
	for _, s := range r.Series {
		if OutOfRange(s.Value, p.Target, p.Tolerance) {
			failures = append(failures, fmt.Sprintf("  #%d %s=%.1f", s.Seq, s.Label, s.Value))
		}
	}
	if len(failures) > 0 {
		t.Errorf("Samples outside %.1f ~ %.1f:\n%s", lo, hi, failures)
		return
	}
	t.Logf("✓ %d samples within %.1f ~ %.1f", len(r.Series), lo, hi)
}

// AssertLoadConverges polls the controller until the measured load is
// within DeadBand of the target, or fails after timeout.
func AssertLoadConverges(t *testing.T, c *LoadController, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		target, measured := int64(c.TargetLoad()), int64(c.MeasuredLoad())
		diff := target - measured
		if diff <= DeadBand && diff >= -DeadBand {
			t.Logf("✓ Load converged: target=%d%% measured=%d%% work_units=%d",
				target, measured, c.WorkUnits())
			return
		}
		if time.Now().After(deadline) {
			t.Errorf("Load did not converge within %s: target=%d%% measured=%d%% work_units=%d",
				timeout, target, measured, c.WorkUnits())
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// PrintReport writes the run summary to the test log.
func PrintReport(t *testing.T, rp Report) {
	t.Helper()

	t.Logf("%s", rp.Start())
	t.Logf("%s", rp.Summary())
	if rp.Results != nil && rp.Results.Samples > 1 {
		t.Logf("std deviation: %.3f", rp.Results.StdDeviation())
	}
}
