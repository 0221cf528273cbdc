//go:build !linux

package hwbench

// pinToCPU is a no-op where thread affinity is not supported; the OS
// scheduler spreads the locked threads on its own.
func pinToCPU(int) error { return nil }
