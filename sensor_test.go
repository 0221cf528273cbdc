package hwbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHardwareType(t *testing.T) {
	hw, err := ParseHardwareType("cpu")
	require.NoError(t, err)
	assert.Equal(t, HardwareCPU, hw)

	hw, err = ParseHardwareType("GPUNVIDIA")
	require.NoError(t, err)
	assert.Equal(t, HardwareGpuNvidia, hw)

	_, err = ParseHardwareType("toaster")
	assert.ErrorIs(t, err, ErrUnknownHardware)
}

func TestParseSensorType(t *testing.T) {
	st, err := ParseSensorType("clockaverage")
	require.NoError(t, err)
	assert.Equal(t, SensorClockAverage, st)

	_, err = ParseSensorType("humidity")
	assert.ErrorIs(t, err, ErrUnknownSensor)
}

func TestExpand(t *testing.T) {
	assert.Equal(t, []HardwareType{HardwareRAM}, HardwareRAM.Expand())
	assert.Len(t, HardwareAll.Expand(), len(hardwareNames)-1)
	assert.NotContains(t, HardwareAll.Expand(), HardwareAll)

	assert.Equal(t, []SensorType{SensorFan}, SensorFan.Expand())
	assert.Len(t, SensorAll.Expand(), len(sensorInfos)-1)
	assert.NotContains(t, SensorAll.Expand(), SensorAll)
}

func TestUnitsAndNames(t *testing.T) {
	tests := []struct {
		st   SensorType
		unit string
	}{
		{SensorVoltage, "V"},
		{SensorClock, "MHz"},
		{SensorClockAverage, "MHz"},
		{SensorTemperature, "°C"},
		{SensorLoad, "%"},
		{SensorFan, "RPM"},
		{SensorGBData, "GB"},
		{SensorType("bogus"), "*"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.unit, tt.st.Unit(), string(tt.st))
	}

	assert.Equal(t, "Memory", HardwareRAM.DisplayName())
	assert.Equal(t, "Unknown", HardwareType("bogus").DisplayName())
	assert.Equal(t, "MHz(Clock)", Sensor{Type: SensorClock}.UnitLabel())
}

func TestNeedsSyntheticLoad(t *testing.T) {
	tests := []struct {
		hw   HardwareType
		st   SensorType
		want bool
	}{
		{HardwareCPU, SensorClock, true},
		{HardwareCPU, SensorClockAverage, true},
		{HardwareCPU, SensorLoad, true},
		{HardwareCPU, SensorTemperature, false},
		{HardwareCPU, SensorAll, false},
		{HardwareRAM, SensorLoad, false},
		{HardwareAll, SensorClock, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsSyntheticLoad(tt.hw, tt.st), "%s/%s", tt.hw, tt.st)
	}
}
