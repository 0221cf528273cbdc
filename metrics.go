package hwbench

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes a run as Prometheus gauges and counters. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	workUnits    prometheus.Gauge
	targetLoad   prometheus.Gauge
	measuredLoad prometheus.Gauge
	workDone     prometheus.Counter
	sensorValue  *prometheus.GaugeVec
	samples      prometheus.Counter
	violations   prometheus.Counter
	queryErrors  prometheus.Counter
	verdict      *prometheus.GaugeVec

	lastWorkDone uint64 // TotalWorkDone already added to workDone
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		workUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hwbench_work_units",
			Help: "Busy-work iterations per worker tick",
		}),
		targetLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hwbench_target_load_percent",
			Help: "Requested synthetic CPU load",
		}),
		measuredLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hwbench_measured_load_percent",
			Help: "Last measured whole-system CPU load",
		}),
		workDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwbench_work_done_total",
			Help: "Busy-work iterations completed by all workers",
		}),
		sensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hwbench_sensor_value",
			Help: "Latest reading per sensor",
		}, []string{"hardware", "sensor_type", "sensor"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwbench_samples_total",
			Help: "Sensor readings recorded",
		}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwbench_violations_total",
			Help: "Readings outside the allowed range",
		}),
		queryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwbench_query_errors_total",
			Help: "Failed sensor queries",
		}),
		verdict: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hwbench_verdict",
			Help: "1 for the verdict of the finished run",
		}, []string{"verdict"}),
	}

	for _, c := range []prometheus.Collector{
		m.workUnits, m.targetLoad, m.measuredLoad, m.workDone, m.sensorValue,
		m.samples, m.violations, m.queryErrors, m.verdict,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeController(c *LoadController) {
	if m == nil {
		return
	}
	m.workUnits.Set(float64(c.WorkUnits()))
	m.targetLoad.Set(float64(c.TargetLoad()))
	m.measuredLoad.Set(float64(c.MeasuredLoad()))
	if done := c.TotalWorkDone(); done > m.lastWorkDone {
		m.workDone.Add(float64(done - m.lastWorkDone))
		m.lastWorkDone = done
	}
}

func (m *Metrics) observeSample(s Sensor) {
	if m == nil {
		return
	}
	m.samples.Inc()
	m.sensorValue.WithLabelValues(string(s.Parent), string(s.Type), s.Name).Set(s.Value)
}

func (m *Metrics) observeViolation() {
	if m == nil {
		return
	}
	m.violations.Inc()
}

func (m *Metrics) observeQueryError() {
	if m == nil {
		return
	}
	m.queryErrors.Inc()
}

func (m *Metrics) observeVerdict(v Verdict) {
	if m == nil {
		return
	}
	m.verdict.WithLabelValues(string(VerdictPass)).Set(0)
	m.verdict.WithLabelValues(string(VerdictFail)).Set(0)
	m.verdict.WithLabelValues(string(v)).Set(1)
}
