package hwbench

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"bitbucket.org/bertimus9/systemstat"
)

const kibPerGiB = 1024 * 1024

// OSSource reads sensors the operating system exposes without a vendor
// monitor: CPU load and clock, memory and swap.
type OSSource struct {
	CPUInfoPath string // default /proc/cpuinfo

	usage     UsageSampler
	memSample func() systemstat.MemSample
	logger    *slog.Logger
}

// NewOSSource returns a Source backed by /proc.
func NewOSSource(logger *slog.Logger) *OSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &OSSource{
		CPUInfoPath: "/proc/cpuinfo",
		usage:       NewSystemUsage(),
		memSample:   systemstat.GetMemSample,
		logger:      logger,
	}
}

// Query implements Source.
func (o *OSSource) Query(ctx context.Context, hw HardwareType, st SensorType) ([]Sensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Sensor
	for _, h := range hw.Expand() {
		switch h {
		case HardwareCPU:
			out = append(out, o.queryCPU(h, st.Expand())...)
		case HardwareRAM:
			out = append(out, o.queryMemory(h, st.Expand())...)
		default:
			o.logger.Debug("hardware type not supported by os source", "hardware", h)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: os source has no %s %s sensors", ErrDataUnavailable, hw, st)
	}
	return out, nil
}

func (o *OSSource) queryCPU(parent HardwareType, sts []SensorType) []Sensor {
	var out []Sensor
	for _, st := range sts {
		switch st {
		case SensorLoad:
			load, err := o.usage.Usage()
			if err != nil {
				o.logger.Debug("cpu load unavailable", "error", err)
				continue
			}
			out = append(out, Sensor{
				Name: "CPU Total", Identifier: "cpu", Type: st, Parent: parent,
				Value: load, Min: 0, Max: 100, Data: formatValue(load),
			})
		case SensorClock:
			clocks, err := readCPUClocks(o.CPUInfoPath)
			if err != nil {
				o.logger.Debug("cpu clock unavailable", "error", err)
				continue
			}
			for i, mhz := range clocks {
				out = append(out, Sensor{
					Name:       fmt.Sprintf("CPU Core #%d", i+1),
					Identifier: fmt.Sprintf("cpu%d", i),
					Type:       st, Parent: parent,
					Value: mhz, Min: mhz, Max: mhz, Index: i, Data: formatValue(mhz),
				})
			}
		case SensorClockAverage:
			clocks, err := readCPUClocks(o.CPUInfoPath)
			if err != nil {
				o.logger.Debug("cpu clock unavailable", "error", err)
				continue
			}
			lo, hi, sum := clocks[0], clocks[0], 0.0
			for _, mhz := range clocks {
				lo, hi, sum = math.Min(lo, mhz), math.Max(hi, mhz), sum+mhz
			}
			avg := math.Round(sum / float64(len(clocks)))
			out = append(out, Sensor{
				Name: "CPU Average Clock", Identifier: "cpu", Type: st, Parent: parent,
				Value: avg, Min: lo, Max: hi, Data: formatValue(avg),
			})
		default:
			o.logger.Debug("sensor type not supported by os source", "hardware", parent, "sensor", st)
		}
	}
	return out
}

func (o *OSSource) queryMemory(parent HardwareType, sts []SensorType) []Sensor {
	var out []Sensor
	for idx, st := range sts {
		switch st {
		case SensorGBData:
			m := o.memSample()
			total := math.Round(float64(m.MemTotal) / kibPerGiB)
			out = append(out, Sensor{
				Name: "MemoryTotal", Identifier: "MemoryTotal", Type: st, Parent: parent,
				Value: total,
				Min:   float64(m.MemFree) / kibPerGiB,
				Max:   float64(m.MemUsed) / kibPerGiB,
				Index: idx, Data: formatValue(total),
			})
		case SensorGBSmallData:
			m := o.memSample()
			total := math.Round(float64(m.SwapTotal) / kibPerGiB)
			out = append(out, Sensor{
				Name: "SwapTotal", Identifier: "SwapTotal", Type: st, Parent: parent,
				Value: total,
				Min:   float64(m.SwapFree) / kibPerGiB,
				Max:   float64(m.SwapUsed) / kibPerGiB,
				Index: idx, Data: formatValue(total),
			})
		case SensorLoad:
			m := o.memSample()
			if m.MemTotal == 0 {
				continue
			}
			load := math.Round(float64(m.MemUsed) / float64(m.MemTotal) * 100)
			out = append(out, Sensor{
				Name: "MemoryLoad", Identifier: "MemoryLoad", Type: st, Parent: parent,
				Value: load, Min: 0, Max: 100, Index: idx, Data: formatValue(load),
			})
		default:
			o.logger.Debug("sensor type not supported by os source", "hardware", parent, "sensor", st)
		}
	}
	return out
}

// readCPUClocks returns the "cpu MHz" value of every processor entry.
func readCPUClocks(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var clocks []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "cpu MHz" {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		clocks = append(clocks, mhz)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(clocks) == 0 {
		return nil, fmt.Errorf("%s: no cpu MHz entries", path)
	}
	return clocks, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
