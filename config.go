package hwbench

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable holding the bench plan path.
const EnvConfig = "HWBENCH_CONFIG"

// Config is a bench plan: which sensor to test, against what, for how
// long. It is read from YAML and may be overridden from the command line.
type Config struct {
	// Source is the sensor backend: "os" or "replay".
	Source string `yaml:"source"`

	Hardware string `yaml:"hardware"`
	Sensor   string `yaml:"sensor"`

	// Task is check, print or data.
	Task string `yaml:"task"`

	Duration  int           `yaml:"duration"`
	Target    float64       `yaml:"target"`
	Tolerance float64       `yaml:"tolerance"`
	Load      float64       `yaml:"load"`
	Interval  time.Duration `yaml:"interval"`
	Full      bool          `yaml:"full"`

	// Workers overrides the load worker count (0 = one per logical CPU).
	Workers int `yaml:"workers"`

	// Replay holds the scripted readings for the replay source.
	Replay []float64 `yaml:"replay,omitempty"`

	// MetricsTextfile, when set, receives the run metrics in Prometheus
	// text format after the run.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`
}

// DefaultConfig returns a one-second CPU load read on the OS source.
func DefaultConfig() Config {
	return Config{
		Source:   "os",
		Hardware: string(HardwareCPU),
		Sensor:   string(SensorLoad),
		Task:     string(ModePrint),
		Duration: 1,
		Interval: time.Second,
	}
}

// LoadConfig reads a YAML bench plan on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enums and ranges.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseHardwareType(c.Hardware); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseSensorType(c.Sensor); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseMode(c.Task); err != nil {
		errs = append(errs, err)
	}
	switch c.Source {
	case "os":
	case "replay":
		if len(c.Replay) == 0 {
			errs = append(errs, errors.New("replay source needs at least one value"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (want os or replay)", c.Source))
	}
	if c.Duration < 1 {
		errs = append(errs, fmt.Errorf("duration must be at least 1, got %d", c.Duration))
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance must not be negative, got %v", c.Tolerance))
	}
	if c.Load < 0 || c.Load > 100 {
		errs = append(errs, fmt.Errorf("load must be within 0..100, got %v", c.Load))
	}
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative, got %s", c.Interval))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// TestParams validates the plan and converts it to run parameters.
func (c Config) TestParams() (HardwareType, SensorType, Params, error) {
	if err := c.Validate(); err != nil {
		return "", "", Params{}, err
	}
	hw, _ := ParseHardwareType(c.Hardware)
	st, _ := ParseSensorType(c.Sensor)
	mode, _ := ParseMode(c.Task)
	return hw, st, Params{
		Duration:  c.Duration,
		Target:    c.Target,
		Tolerance: c.Tolerance,
		Load:      c.Load,
		Interval:  c.Interval,
		Mode:      mode,
		Full:      c.Full,
	}, nil
}

// NewSource builds the configured sensor backend.
func (c Config) NewSource(logger *slog.Logger) (Source, error) {
	switch c.Source {
	case "os":
		return NewOSSource(logger), nil
	case "replay":
		return NewReplaySource(c.Replay...), nil
	}
	return nil, fmt.Errorf("unknown source %q", c.Source)
}
