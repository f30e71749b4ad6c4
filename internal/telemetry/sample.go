package telemetry

import "time"

// Sample represents a single telemetry snapshot for an NPU chip.
type Sample struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"ts"`
	Metrics   Metrics   `json:"metrics"`
}

// Metrics contains chip telemetry values. Pointer fields serialize as null
// when the underlying query failed or the sensor had nothing to report.
type Metrics struct {
	PowerW             *float64 `json:"power_w"`
	TempC              *float64 `json:"temp_c"`
	VoltageV           *float64 `json:"voltage_v"`
	AICoreFreqMHz      *float64 `json:"aicore_freq_mhz"`
	AICoreCurFreqMHz   *float64 `json:"aicore_cur_freq_mhz"`
	AICoreBusyPct      *float64 `json:"aicore_busy_pct"`
	MemBusyPct         *float64 `json:"mem_busy_pct"`
	MemTotalMB         *uint64  `json:"mem_total_mb"`
	MemAvailableMB     *uint64  `json:"mem_available_mb"`
	HBMTotalMB         *uint64  `json:"hbm_total_mb"`
	HBMUsedMB          *uint64  `json:"hbm_used_mb"`
	HBMTempC           *float64 `json:"hbm_temp_c"`
	HBMBusyPct         *float64 `json:"hbm_busy_pct"`
	ECCSingleBitErrors *uint64  `json:"ecc_single_bit_errors"`
	ECCDoubleBitErrors *uint64  `json:"ecc_double_bit_errors"`
}
