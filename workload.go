package hwbench

import "math"

// stepFunc is one iteration of the busy-work transform.
type stepFunc func(x float64, i uint64) float64

// chaoticStep is bounded but not constant-foldable:
//
//	x' = sqrt(sin(x) + 1) + cos(i)·π
func chaoticStep(x float64, i uint64) float64 {
	return math.Sqrt(math.Sin(x)+1) + math.Cos(float64(i))*math.Pi
}

// WorkResult reports one batch of busy-work.
type WorkResult struct {
	Iterations uint64  // iterations actually executed
	NonFinite  uint64  // iterations that produced NaN/Inf and were reset
	Aborted    bool    // stopped early: more than half the iterations were non-finite
	Checksum   float64 // final x, returned so the loop cannot be elided
}

// PerformWork runs n iterations of the busy-work transform.
func PerformWork(n uint64) WorkResult {
	return performWork(n, chaoticStep)
}

func performWork(n uint64, step stepFunc) WorkResult {
	var (
		x   float64
		bad uint64
		i   uint64
	)
	for i = 0; i < n; i++ {
		next := step(x, i)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			bad++
			next = 0
		}
		x = next

		if bad > n/2 {
			return WorkResult{Iterations: i + 1, NonFinite: bad, Aborted: true, Checksum: x}
		}
	}
	return WorkResult{Iterations: n, NonFinite: bad, Checksum: x}
}
