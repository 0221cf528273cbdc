package hwbench

import (
	"fmt"
	"strings"
)

// Report renders TestResults as the operator-facing text.
type Report struct {
	Params  Params
	Results *TestResults
}

func (rp Report) action() string {
	if rp.Params.Mode == ModeCheck {
		return "test"
	}
	return "read"
}

// Start is the banner printed before the run.
func (rp Report) Start() string {
	r := rp.Results
	return fmt.Sprintf(
		"\n=== Start %s %s %s ===\n"+
			"--- sensor -> %s %s %s ---\n"+
			"target: %.1f\n"+
			"tolerance: ±%.1f\n"+
			"duration: %d s\n"+
			"====================================",
		r.Hardware, r.Hardware.DisplayName(), rp.action(),
		r.Sensor, r.Sensor.DisplayName(), r.Sensor.Unit(),
		rp.Params.Target,
		rp.Params.Tolerance,
		rp.Params.Duration,
	)
}

// Summary is the final report. It always states the verdict and, for a
// failed run, the reason.
func (rp Report) Summary() string {
	r := rp.Results
	p := rp.Params
	unit := r.Sensor.Unit()
	lo, hi := p.Range()

	verdict := string(r.Verdict)
	if verdict == "" {
		verdict = "PENDING"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Summary -> %s %s ===\n", r.Hardware, r.Hardware.DisplayName())
	fmt.Fprintf(&b, "--- sensor -> %s %s %s ---\n", r.Sensor, r.Sensor.DisplayName(), unit)
	fmt.Fprintf(&b, "result: %s\n", verdict)
	if r.Verdict == VerdictFail && r.Reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", r.Reason)
	}
	if p.Full {
		fmt.Fprintf(&b, "samples: %d\n", r.Samples)
		fmt.Fprintf(&b, "std deviation: %.2f %s\n", r.StdDeviation(), unit)
	}
	fmt.Fprintf(&b, "data: %s\n", r.Data)
	fmt.Fprintf(&b, "target: %.1f %s\n", p.Target, unit)
	fmt.Fprintf(&b, "average: %.1f %s\n", r.Avg, unit)
	fmt.Fprintf(&b, "min: %.1f %s\n", r.Min, unit)
	fmt.Fprintf(&b, "max: %.1f %s\n", r.Max, unit)
	fmt.Fprintf(&b, "count: %d\n", r.Samples)
	fmt.Fprintf(&b, "errors: %d\n", r.ErrorCount)
	fmt.Fprintf(&b, "load: %.1f%%\n", p.Load)
	fmt.Fprintf(&b, "average load: %.1f%%\n", r.Load.Avg)
	fmt.Fprintf(&b, "tolerance: ±%.1f\n", p.Tolerance)
	fmt.Fprintf(&b, "allowed range: %.1f ~ %.1f %s\n", lo, hi, unit)
	b.WriteString("====================\n")
	return b.String()
}
