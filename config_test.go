package hwbench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
hardware: cpu
sensor: clock
task: check
duration: 30
target: 3000
tolerance: 500
load: 80
interval: 250ms
workers: 4
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "os", cfg.Source, "default kept")
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, 4, cfg.Workers)

	hw, st, p, err := cfg.TestParams()
	require.NoError(t, err)
	assert.Equal(t, HardwareCPU, hw)
	assert.Equal(t, SensorClock, st)
	assert.Equal(t, Params{
		Duration:  30,
		Target:    3000,
		Tolerance: 500,
		Load:      80,
		Interval:  250 * time.Millisecond,
		Mode:      ModeCheck,
	}, p)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "duration: [1, 2"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"unknown hardware", func(c *Config) { c.Hardware = "toaster" }, "toaster"},
		{"unknown sensor", func(c *Config) { c.Sensor = "smell" }, "smell"},
		{"unknown task", func(c *Config) { c.Task = "watch" }, "watch"},
		{"unknown source", func(c *Config) { c.Source = "ipmi" }, "unknown source"},
		{"replay without values", func(c *Config) { c.Source = "replay" }, "replay source"},
		{"zero duration", func(c *Config) { c.Duration = 0 }, "duration"},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }, "tolerance"},
		{"load above 100", func(c *Config) { c.Load = 120 }, "load"},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }, "interval"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ValidateReportsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 0
	cfg.Load = -5

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")
	assert.Contains(t, err.Error(), "load")
}

func TestConfig_NewSource(t *testing.T) {
	cfg := DefaultConfig()
	src, err := cfg.NewSource(quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &OSSource{}, src)

	cfg.Source = "replay"
	cfg.Replay = []float64{1, 2}
	src, err = cfg.NewSource(quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &ReplaySource{}, src)

	cfg.Source = "ipmi"
	_, err = cfg.NewSource(quietLogger())
	assert.Error(t, err)
}
