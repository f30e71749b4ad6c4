package httpserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/npu-tools/go-dcmi/internal/healthwatch"
	"github.com/npu-tools/go-dcmi/internal/inventory"
	"github.com/npu-tools/go-dcmi/internal/telemetry"
)

type chipMetricsCollector struct {
	telemetry  *telemetry.Manager
	health     *healthwatch.Manager
	devices    []inventory.Device
	metrics    []chipMetric
	healthDesc *prometheus.Desc
}

type chipMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	extract   func(sample telemetry.Sample) (float64, bool)
}

func newChipMetricsCollector(devices []inventory.Device, telemetryManager *telemetry.Manager, healthManager *healthwatch.Manager) prometheus.Collector {
	if telemetryManager == nil || len(devices) == 0 {
		return nil
	}

	collector := &chipMetricsCollector{
		telemetry: telemetryManager,
		health:    healthManager,
		devices:   append([]inventory.Device(nil), devices...),
	}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("dcmi", "chip", name),
			help,
			[]string{"device_id"},
			nil,
		)
	}

	collector.healthDesc = desc("health_state", "Current chip health state (0 healthy, 1 general, 2 important, 3 emergency alarm).")

	collector.metrics = []chipMetric{
		{
			desc:      desc("power_watts", "Current chip power draw in Watts."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.PowerW == nil {
					return 0, false
				}
				return *sample.Metrics.PowerW, true
			},
		},
		{
			desc:      desc("temperature_celsius", "Current chip temperature in Celsius."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.TempC == nil {
					return 0, false
				}
				return *sample.Metrics.TempC, true
			},
		},
		{
			desc:      desc("voltage_volts", "Current chip supply voltage in Volts."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.VoltageV == nil {
					return 0, false
				}
				return *sample.Metrics.VoltageV, true
			},
		},
		{
			desc:      desc("aicore_frequency_mhz", "Rated AI core frequency in MHz."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.AICoreFreqMHz == nil {
					return 0, false
				}
				return *sample.Metrics.AICoreFreqMHz, true
			},
		},
		{
			desc:      desc("aicore_current_frequency_mhz", "Current AI core frequency in MHz."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.AICoreCurFreqMHz == nil {
					return 0, false
				}
				return *sample.Metrics.AICoreCurFreqMHz, true
			},
		},
		{
			desc:      desc("aicore_utilization_percent", "Current AI core utilization percentage."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.AICoreBusyPct == nil {
					return 0, false
				}
				return *sample.Metrics.AICoreBusyPct, true
			},
		},
		{
			desc:      desc("memory_utilization_percent", "Current device memory utilization percentage."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.MemBusyPct == nil {
					return 0, false
				}
				return *sample.Metrics.MemBusyPct, true
			},
		},
		{
			desc:      desc("memory_total_megabytes", "Total device memory in megabytes."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.MemTotalMB == nil {
					return 0, false
				}
				return float64(*sample.Metrics.MemTotalMB), true
			},
		},
		{
			desc:      desc("memory_available_megabytes", "Available device memory in megabytes."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.MemAvailableMB == nil {
					return 0, false
				}
				return float64(*sample.Metrics.MemAvailableMB), true
			},
		},
		{
			desc:      desc("hbm_total_megabytes", "Total HBM capacity in megabytes."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.HBMTotalMB == nil {
					return 0, false
				}
				return float64(*sample.Metrics.HBMTotalMB), true
			},
		},
		{
			desc:      desc("hbm_used_megabytes", "Current HBM usage in megabytes."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.HBMUsedMB == nil {
					return 0, false
				}
				return float64(*sample.Metrics.HBMUsedMB), true
			},
		},
		{
			desc:      desc("hbm_temperature_celsius", "Current HBM temperature in Celsius."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.HBMTempC == nil {
					return 0, false
				}
				return *sample.Metrics.HBMTempC, true
			},
		},
		{
			desc:      desc("hbm_utilization_percent", "Current HBM bandwidth utilization percentage."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.HBMBusyPct == nil {
					return 0, false
				}
				return *sample.Metrics.HBMBusyPct, true
			},
		},
		{
			desc:      desc("ecc_single_bit_errors_total", "Total corrected single bit ECC errors."),
			valueType: prometheus.CounterValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.ECCSingleBitErrors == nil {
					return 0, false
				}
				return float64(*sample.Metrics.ECCSingleBitErrors), true
			},
		},
		{
			desc:      desc("ecc_double_bit_errors_total", "Total uncorrected double bit ECC errors."),
			valueType: prometheus.CounterValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Metrics.ECCDoubleBitErrors == nil {
					return 0, false
				}
				return float64(*sample.Metrics.ECCDoubleBitErrors), true
			},
		},
		{
			desc:      desc("sample_timestamp_seconds", "Unix timestamp of the latest chip sample."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Timestamp.IsZero() {
					return 0, false
				}
				return float64(sample.Timestamp.Unix()), true
			},
		},
		{
			desc:      desc("sample_age_seconds", "Seconds elapsed since the latest chip sample was collected."),
			valueType: prometheus.GaugeValue,
			extract: func(sample telemetry.Sample) (float64, bool) {
				if sample.Timestamp.IsZero() {
					return 0, false
				}
				age := time.Since(sample.Timestamp).Seconds()
				if age < 0 {
					age = 0
				}
				return age, true
			},
		},
	}

	return collector
}

func (c *chipMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range c.metrics {
		ch <- metric.desc
	}
	if c.health != nil {
		ch <- c.healthDesc
	}
}

func (c *chipMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.telemetry == nil {
		return
	}
	for _, dev := range c.devices {
		sample, ok := c.telemetry.Latest(dev.ID)
		if !ok {
			continue
		}
		for _, metric := range c.metrics {
			value, ok := metric.extract(sample)
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(metric.desc, metric.valueType, value, dev.ID)
		}
	}

	if c.health == nil {
		return
	}
	for _, dev := range c.devices {
		snapshot, ok := c.health.Latest(dev.ID)
		if !ok || snapshot.HealthCode == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.healthDesc, prometheus.GaugeValue, float64(*snapshot.HealthCode), dev.ID)
	}
}
