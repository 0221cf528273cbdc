package hwbench

import (
	"errors"
	"math"
	"sync"

	"bitbucket.org/bertimus9/systemstat"
)

// UsageSampler reports whole-system CPU usage in percent.
type UsageSampler interface {
	Usage() (float64, error)
}

// UsageFunc adapts a function to UsageSampler.
type UsageFunc func() (float64, error)

func (f UsageFunc) Usage() (float64, error) { return f() }

var errNoCPUSample = errors.New("cpu usage unavailable")

// SystemUsage measures CPU busy percent between consecutive calls from
// /proc/stat deltas.
type SystemUsage struct {
	mu   sync.Mutex
	prev systemstat.CPUSample
}

// NewSystemUsage takes the baseline sample for the first Usage call.
func NewSystemUsage() *SystemUsage {
	return &SystemUsage{prev: systemstat.GetCPUSample()}
}

// Usage returns busy percent since the previous call, rounded and
// clamped to [0,100].
func (s *SystemUsage) Usage() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := systemstat.GetCPUSample()
	if cur.Total == s.prev.Total {
		// no ticks elapsed (or /proc/stat is missing)
		return 0, errNoCPUSample
	}
	avg := systemstat.GetSimpleCPUAverage(s.prev, cur)
	s.prev = cur

	if math.IsNaN(avg.BusyPct) {
		return 0, errNoCPUSample
	}
	return math.Max(0, math.Min(100, math.Round(avg.BusyPct))), nil
}
