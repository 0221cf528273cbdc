//go:build linux

package hwbench

import "golang.org/x/sys/unix"

// pinToCPU binds the calling OS thread to one logical CPU. The caller
// must hold runtime.LockOSThread.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
