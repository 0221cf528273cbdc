package hwbench

import (
	"context"
	"fmt"
	"strings"
)

// HardwareType identifies a hardware component.
type HardwareType string

const (
	HardwareAll        HardwareType = "ALL"
	HardwareMainboard  HardwareType = "Mainboard"
	HardwareSuperIO    HardwareType = "SuperIO"
	HardwareCPU        HardwareType = "CPU"
	HardwareGpuNvidia  HardwareType = "GpuNvidia"
	HardwareGpuAti     HardwareType = "GpuAti"
	HardwareTBalancer  HardwareType = "TBalancer"
	HardwareHeatmaster HardwareType = "Heatmaster"
	HardwareHDD        HardwareType = "HDD"
	HardwareRAM        HardwareType = "RAM"
	HardwareUnknown    HardwareType = "Unknown"
)

var hardwareNames = map[HardwareType]string{
	HardwareAll:        "All hardware",
	HardwareMainboard:  "Mainboard",
	HardwareSuperIO:    "Super I/O chip",
	HardwareCPU:        "Central processing unit",
	HardwareGpuNvidia:  "NVIDIA graphics processor",
	HardwareGpuAti:     "AMD/ATI graphics processor",
	HardwareTBalancer:  "T-Balancer device",
	HardwareHeatmaster: "Heatmaster device",
	HardwareHDD:        "Hard disk drive",
	HardwareRAM:        "Memory",
	HardwareUnknown:    "Unknown",
}

// hardwareOrder is the expansion order of HardwareAll.
var hardwareOrder = []HardwareType{
	HardwareMainboard, HardwareSuperIO, HardwareCPU, HardwareGpuNvidia, HardwareGpuAti,
	HardwareTBalancer, HardwareHeatmaster, HardwareHDD, HardwareRAM, HardwareUnknown,
}

// ParseHardwareType matches s case-insensitively against the known types.
func ParseHardwareType(s string) (HardwareType, error) {
	for h := range hardwareNames {
		if strings.EqualFold(string(h), s) {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHardware, s)
}

// DisplayName is the operator-facing name.
func (h HardwareType) DisplayName() string {
	if n, ok := hardwareNames[h]; ok {
		return n
	}
	return hardwareNames[HardwareUnknown]
}

// Expand returns every concrete type for HardwareAll, otherwise h itself.
func (h HardwareType) Expand() []HardwareType {
	if h == HardwareAll {
		return append([]HardwareType(nil), hardwareOrder...)
	}
	return []HardwareType{h}
}

// SensorType identifies what a sensor measures.
type SensorType string

const (
	SensorAll          SensorType = "ALL"
	SensorVoltage      SensorType = "Voltage"
	SensorClock        SensorType = "Clock"
	SensorTemperature  SensorType = "Temperature"
	SensorLoad         SensorType = "Load"
	SensorFan          SensorType = "Fan"
	SensorFlow         SensorType = "Flow"
	SensorControl      SensorType = "Control"
	SensorLevel        SensorType = "Level"
	SensorPower        SensorType = "Power"
	SensorData         SensorType = "Data"
	SensorGBData       SensorType = "GBData"
	SensorThroughput   SensorType = "Throughput"
	SensorDataRate     SensorType = "DataRate"
	SensorSmallData    SensorType = "SmallData"
	SensorGBSmallData  SensorType = "GBSmallData"
	SensorFSB          SensorType = "FSB"
	SensorMultiplexer  SensorType = "Multiplexer"
	SensorClockAverage SensorType = "ClockAverage"
	SensorUnknown      SensorType = "Unknown"
)

type sensorInfo struct {
	name string
	unit string
}

var sensorInfos = map[SensorType]sensorInfo{
	SensorAll:          {"All sensors", "*"},
	SensorVoltage:      {"Voltage", "V"},
	SensorClock:        {"Clock", "MHz"},
	SensorTemperature:  {"Temperature", "°C"},
	SensorLoad:         {"Load", "%"},
	SensorFan:          {"Fan", "RPM"},
	SensorFlow:         {"Flow", "L/h"},
	SensorControl:      {"Control", "%"},
	SensorLevel:        {"Level", "%"},
	SensorPower:        {"Power", "W"},
	SensorData:         {"Data", "B"},
	SensorGBData:       {"Data (GB)", "GB"},
	SensorThroughput:   {"Throughput", "B/s"},
	SensorDataRate:     {"Data rate", "B/s"},
	SensorSmallData:    {"Small data", "SB"},
	SensorGBSmallData:  {"Small data (GB)", "GB"},
	SensorFSB:          {"Front-side bus", "MHz"},
	SensorMultiplexer:  {"Multiplier", "MHz"},
	SensorClockAverage: {"Average clock", "MHz"},
	SensorUnknown:      {"Unknown", "*"},
}

var sensorOrder = []SensorType{
	SensorVoltage, SensorClock, SensorTemperature, SensorLoad, SensorFan, SensorFlow,
	SensorControl, SensorLevel, SensorPower, SensorData, SensorGBData, SensorThroughput,
	SensorDataRate, SensorSmallData, SensorGBSmallData, SensorFSB, SensorMultiplexer,
	SensorClockAverage, SensorUnknown,
}

// ParseSensorType matches s case-insensitively against the known types.
func ParseSensorType(s string) (SensorType, error) {
	for st := range sensorInfos {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSensor, s)
}

func (s SensorType) DisplayName() string { return s.info().name }
func (s SensorType) Unit() string        { return s.info().unit }

func (s SensorType) info() sensorInfo {
	if i, ok := sensorInfos[s]; ok {
		return i
	}
	return sensorInfos[SensorUnknown]
}

// Expand returns every concrete type for SensorAll, otherwise s itself.
func (s SensorType) Expand() []SensorType {
	if s == SensorAll {
		return append([]SensorType(nil), sensorOrder...)
	}
	return []SensorType{s}
}

// NeedsSyntheticLoad reports whether a test of this combination must run
// the CPU load workers. Only CPU clock and load readings depend on it.
func NeedsSyntheticLoad(hw HardwareType, st SensorType) bool {
	if hw != HardwareCPU {
		return false
	}
	switch st {
	case SensorLoad, SensorClock, SensorClockAverage:
		return true
	}
	return false
}

// Sensor is one hardware measurement point as reported by a Source.
type Sensor struct {
	Name       string       `json:"name"`
	Identifier string       `json:"identifier"`
	Type       SensorType   `json:"sensor_type"`
	Parent     HardwareType `json:"parent"`
	Value      float64      `json:"value"`
	Min        float64      `json:"min"`
	Max        float64      `json:"max"`
	Index      int          `json:"index"`
	// Data is the raw reading as text, when the source has one.
	Data string `json:"data,omitempty"`
}

// UnitLabel renders the unit with the sensor type name, e.g. "MHz(Clock)".
func (s Sensor) UnitLabel() string {
	return fmt.Sprintf("%s(%s)", s.Type.Unit(), s.Type.DisplayName())
}

// Source is a sensor backend. Query returns the current readings for a
// hardware/sensor combination in a stable order.
type Source interface {
	Query(ctx context.Context, hw HardwareType, st SensorType) ([]Sensor, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, hw HardwareType, st SensorType) ([]Sensor, error)

func (f SourceFunc) Query(ctx context.Context, hw HardwareType, st SensorType) ([]Sensor, error) {
	return f(ctx, hw, st)
}
