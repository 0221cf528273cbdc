package hwbench

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bitbucket.org/bertimus9/systemstat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpuinfoFixture = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz
cpu MHz		: 3192.002
cache size	: 12288 KB

processor	: 1
vendor_id	: GenuineIntel
cpu MHz		: 2800.000
`

func fakeOSSource(t *testing.T) *OSSource {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(path, []byte(cpuinfoFixture), 0o644))

	return &OSSource{
		CPUInfoPath: path,
		usage:       constUsage(37),
		memSample: func() systemstat.MemSample {
			// kB, as in /proc/meminfo
			return systemstat.MemSample{
				MemTotal:  16 * kibPerGiB,
				MemUsed:   4 * kibPerGiB,
				MemFree:   12 * kibPerGiB,
				SwapTotal: 2 * kibPerGiB,
				SwapFree:  2 * kibPerGiB,
			}
		},
		logger: quietLogger(),
	}
}

func TestOSSource_CPUClock(t *testing.T) {
	src := fakeOSSource(t)

	sensors, err := src.Query(context.Background(), HardwareCPU, SensorClock)

	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, "CPU Core #1", sensors[0].Name)
	assert.Equal(t, 3192.002, sensors[0].Value)
	assert.Equal(t, HardwareCPU, sensors[0].Parent)
	assert.Equal(t, 1, sensors[1].Index)
	assert.Equal(t, "2800", sensors[1].Data)
}

func TestOSSource_CPUClockAverage(t *testing.T) {
	src := fakeOSSource(t)

	sensors, err := src.Query(context.Background(), HardwareCPU, SensorClockAverage)

	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.Equal(t, 2996.0, sensors[0].Value)
	assert.Equal(t, 2800.0, sensors[0].Min)
	assert.Equal(t, 3192.002, sensors[0].Max)
}

func TestOSSource_CPULoad(t *testing.T) {
	src := fakeOSSource(t)

	sensors, err := src.Query(context.Background(), HardwareCPU, SensorLoad)

	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.Equal(t, 37.0, sensors[0].Value)
}

func TestOSSource_Memory(t *testing.T) {
	src := fakeOSSource(t)

	sensors, err := src.Query(context.Background(), HardwareRAM, SensorAll)

	require.NoError(t, err)
	byName := map[string]Sensor{}
	for _, s := range sensors {
		byName[s.Name] = s
	}
	assert.Equal(t, 25.0, byName["MemoryLoad"].Value)
	assert.Equal(t, 16.0, byName["MemoryTotal"].Value)
	assert.Equal(t, 12.0, byName["MemoryTotal"].Min, "free GiB")
	assert.Equal(t, 2.0, byName["SwapTotal"].Value)
}

func TestOSSource_AllHardware(t *testing.T) {
	src := fakeOSSource(t)

	sensors, err := src.Query(context.Background(), HardwareAll, SensorLoad)

	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, HardwareCPU, sensors[0].Parent)
	assert.Equal(t, HardwareRAM, sensors[1].Parent)
}

func TestOSSource_Unsupported(t *testing.T) {
	src := fakeOSSource(t)

	_, err := src.Query(context.Background(), HardwareGpuNvidia, SensorTemperature)
	assert.ErrorIs(t, err, ErrDataUnavailable)

	src.CPUInfoPath = filepath.Join(t.TempDir(), "missing")
	_, err = src.Query(context.Background(), HardwareCPU, SensorClock)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestOSSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fakeOSSource(t).Query(ctx, HardwareCPU, SensorLoad)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadCPUClocks_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(path, []byte("cpu MHz : fast\n"), 0o644))

	_, err := readCPUClocks(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("processor : 0\n"), 0o644))
	_, err = readCPUClocks(path)
	assert.Error(t, err)
}

func TestReplaySource(t *testing.T) {
	src := NewReplaySource(1, 2, 3)
	ctx := context.Background()

	var got []float64
	for i := 0; i < 5; i++ {
		sensors, err := src.Query(ctx, HardwareCPU, SensorFan)
		require.NoError(t, err)
		require.Len(t, sensors, 1)
		assert.Equal(t, SensorFan, sensors[0].Type)
		got = append(got, sensors[0].Value)
	}
	assert.Equal(t, []float64{1, 2, 3, 1, 2}, got)

	_, err := NewReplaySource().Query(ctx, HardwareCPU, SensorFan)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
