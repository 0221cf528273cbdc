package hwbench

import (
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func constUsage(v float64) UsageSampler {
	return UsageFunc(func() (float64, error) { return v, nil })
}

func TestLoadPool_StopAndJoinIsBounded(t *testing.T) {
	ctrl := NewLoadController(50)
	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{Workers: 4, Usage: constUsage(50), Logger: quietLogger()})
	require.Equal(t, 4, pool.Workers())

	time.Sleep(250 * time.Millisecond)
	ctrl.Stop()

	done := make(chan error, 1)
	go func() { done <- pool.Join() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit within 2s of Stop")
	}
	assert.Greater(t, ctrl.TotalWorkDone(), uint64(0))
}

func TestLoadPool_DefaultsToOneWorkerPerCPU(t *testing.T) {
	ctrl := NewLoadController(10)
	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{Tick: 5 * time.Millisecond, Usage: constUsage(10), Logger: quietLogger()})
	ctrl.Stop()

	require.NoError(t, pool.Join())
	assert.Equal(t, runtime.NumCPU(), pool.Workers())
}

func TestLoadPool_SamplerRetunesController(t *testing.T) {
	ctrl := NewLoadController(80)
	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{
		Workers: 2,
		Tick:    5 * time.Millisecond,
		Pin:     true,
		Usage:   constUsage(10),
		Logger:  quietLogger(),
	})

	require.Eventually(t, func() bool {
		return ctrl.WorkUnits() > DefaultWorkUnits
	}, 2*time.Second, 5*time.Millisecond)

	ctrl.Stop()
	require.NoError(t, pool.Join())
	assert.Equal(t, uint64(10), ctrl.MeasuredLoad())
}

func TestLoadPool_ConvergesOnSimulatedPlant(t *testing.T) {
	ctrl := NewLoadController(50)
	// plant: load grows linearly with work units, 25% at the default
	plant := UsageFunc(func() (float64, error) {
		return float64(ctrl.WorkUnits()) / 4000, nil
	})

	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{Workers: 1, Tick: 5 * time.Millisecond, Usage: plant, Logger: quietLogger()})

	AssertLoadConverges(t, ctrl, 2*time.Second)

	ctrl.Stop()
	require.NoError(t, pool.Join())
}

func TestLoadPool_UsageErrorIsNotFatal(t *testing.T) {
	var calls atomic.Int32
	failing := UsageFunc(func() (float64, error) {
		calls.Add(1)
		return 0, errors.New("no /proc/stat")
	})

	ctrl := NewLoadController(50)
	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{Workers: 2, Tick: 5 * time.Millisecond, Usage: failing, Logger: quietLogger()})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	ctrl.Stop()

	require.NoError(t, pool.Join())
	assert.Equal(t, DefaultWorkUnits, ctrl.WorkUnits())
}

func TestLoadPool_WorkerPanicFailsJoin(t *testing.T) {
	boom := UsageFunc(func() (float64, error) { panic("sensor driver crashed") })

	ctrl := NewLoadController(50)
	ctrl.Start()
	pool := SpawnLoad(ctrl, PoolConfig{Workers: 3, Tick: 5 * time.Millisecond, Usage: boom, Logger: quietLogger()})

	time.Sleep(50 * time.Millisecond)
	ctrl.Stop()
	err := pool.Join()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkerJoin)
	var wErr *WorkerJoinError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, samplerWorker, wErr.Worker)
	assert.Contains(t, err.Error(), "sensor driver crashed")
}
