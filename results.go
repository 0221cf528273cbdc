package hwbench

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxViolations is the number of out-of-range samples a check-mode run
// tolerates. The next one fails the run.
const MaxViolations = 2

// Verdict is the outcome of a test run.
type Verdict string

const (
	VerdictPending Verdict = ""
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
)

// Sample is one recorded reading, kept in arrival order.
type Sample struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Seq   int     `json:"seq"`
}

// LoadStats summarises the measured system load seen at each sample.
type LoadStats struct {
	Total float64 `json:"total"`
	Avg   float64 `json:"avg"`  // running mean over samples
	Last  float64 `json:"last"` // measured load at the latest sample
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// TestResults accumulates the statistics of one run. It is owned by the
// run loop and is not safe for concurrent use.
type TestResults struct {
	RunID      string       `json:"run_id"`
	Source     string       `json:"source"`
	Hardware   HardwareType `json:"hw_type"`
	Sensor     SensorType   `json:"sensor_type"`
	Verdict    Verdict      `json:"res"`
	Reason     string       `json:"reason,omitempty"`
	Data       string       `json:"data"`
	Min        float64      `json:"min"`
	Max        float64      `json:"max"`
	Avg        float64      `json:"avg"`
	Total      float64      `json:"total"`
	Samples    int          `json:"samples"`
	ErrorCount int          `json:"error_count"`
	Load       LoadStats    `json:"load"`
	Series     []Sample     `json:"status"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// NewTestResults returns zeroed results with a fresh run ID.
func NewTestResults(source string, hw HardwareType, st SensorType) *TestResults {
	return &TestResults{
		RunID:    uuid.NewString(),
		Source:   source,
		Hardware: hw,
		Sensor:   st,
	}
}

// Update folds one reading and the measured load at that moment into
// the statistics.
func (r *TestResults) Update(label string, v, load float64) {
	if r.Samples == 0 {
		r.Min, r.Max = v, v
		r.Load.Min, r.Load.Max = load, load
	} else {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
		r.Load.Min = math.Min(r.Load.Min, load)
		r.Load.Max = math.Max(r.Load.Max, load)
	}
	r.Total += v
	r.Samples++
	r.Avg = math.Round(r.Total / float64(r.Samples))
	r.Series = append(r.Series, Sample{Label: label, Value: v, Seq: r.Samples})

	r.Load.Total += load
	r.Load.Avg = r.Load.Total / float64(r.Samples)
	r.Load.Last = load
}

// Mean is the unrounded average of all samples.
func (r *TestResults) Mean() float64 {
	if r.Samples == 0 {
		return 0
	}
	return r.Total / float64(r.Samples)
}

// StdDeviation is the sample standard deviation (Bessel's correction).
// It is 0 for fewer than two samples.
func (r *TestResults) StdDeviation() float64 {
	n := len(r.Series)
	if n < 2 {
		return 0
	}
	mean := r.Mean()
	var sum float64
	for _, s := range r.Series {
		d := s.Value - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// RecordViolation counts an out-of-range sample and reports whether the
// failure threshold has now been crossed.
func (r *TestResults) RecordViolation() bool {
	r.ErrorCount++
	return r.ErrorCount > MaxViolations
}

// Fail marks the run failed with reason.
func (r *TestResults) Fail(reason string) {
	r.Verdict = VerdictFail
	r.Reason = reason
}

// Pass marks the run passed unless it already failed.
func (r *TestResults) Pass() {
	if r.Verdict == VerdictFail {
		return
	}
	r.Verdict = VerdictPass
}

// JSON encodes the results for the reporting layer.
func (r *TestResults) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// OutOfRange reports whether v lies outside [target-tol, target+tol].
func OutOfRange(v, target, tol float64) bool {
	return v > target+tol || v < target-tol
}
