package telemetry

import (
	"log/slog"
	"time"

	"github.com/npu-tools/go-dcmi/pkg/dcmi"
)

// Reader fetches telemetry metrics for a single NPU chip.
type Reader struct {
	deviceID string
	chip     dcmi.Chip
	logger   *slog.Logger
}

// NewReader constructs a Reader for one chip, identified by its inventory
// device id (e.g. "card0-chip0").
func NewReader(deviceID string, chip dcmi.Chip, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		deviceID: deviceID,
		chip:     chip,
		logger:   logger.With("device_id", deviceID),
	}
}

// Sample collects metrics for the chip. Failed queries result in nil fields,
// never in an error: a chip that stops answering still produces samples.
func (r *Reader) Sample() Sample {
	now := time.Now().UTC()
	metrics := Metrics{}

	metrics.PowerW = r.readPower()
	metrics.TempC = r.readTemperature()
	metrics.VoltageV = r.readVoltage()
	metrics.AICoreBusyPct = r.readBusyPct(dcmi.UtilizationAICore)

	r.applyAICore(&metrics)
	r.applyMemory(&metrics)
	r.applyHBM(&metrics)
	r.applyECC(&metrics)

	return Sample{
		DeviceID:  r.deviceID,
		Timestamp: now,
		Metrics:   metrics,
	}
}

func (r *Reader) readPower() *float64 {
	// The library reports power in 0.1 W steps.
	power, err := r.chip.Power()
	if err != nil {
		r.logger.Debug("power query failed", "err", err)
		return nil
	}
	return float64Ptr(float64(power) / 10)
}

func (r *Reader) readTemperature() *float64 {
	temp, err := r.chip.Temperature()
	if err != nil {
		r.logger.Debug("temperature query failed", "err", err)
		return nil
	}
	return float64Ptr(float64(temp))
}

func (r *Reader) readVoltage() *float64 {
	// The library reports voltage in 0.01 V steps.
	voltage, err := r.chip.Voltage()
	if err != nil {
		r.logger.Debug("voltage query failed", "err", err)
		return nil
	}
	return float64Ptr(float64(voltage) / 100)
}

func (r *Reader) readBusyPct(util dcmi.UtilizationType) *float64 {
	rate, err := r.chip.Utilization(util)
	if err != nil {
		r.logger.Debug("utilization query failed", "util", int32(util), "err", err)
		return nil
	}
	return float64Ptr(float64(rate))
}

func (r *Reader) applyAICore(metrics *Metrics) {
	info, err := r.chip.AICoreInfo()
	if err != nil {
		r.logger.Debug("aicore query failed", "err", err)
		return
	}
	metrics.AICoreFreqMHz = float64Ptr(float64(info.Frequency))
	metrics.AICoreCurFreqMHz = float64Ptr(float64(info.CurrentFrequency))
}

func (r *Reader) applyMemory(metrics *Metrics) {
	info, err := r.chip.MemoryInfo()
	if err != nil {
		r.logger.Debug("memory query failed", "err", err)
		return
	}
	metrics.MemTotalMB = uint64Ptr(info.MemorySize)
	metrics.MemAvailableMB = uint64Ptr(info.MemoryAvailable)
	metrics.MemBusyPct = float64Ptr(float64(info.Utilization))
}

func (r *Reader) applyHBM(metrics *Metrics) {
	info, err := r.chip.HBMInfo()
	if err != nil {
		r.logger.Debug("hbm query failed", "err", err)
		return
	}
	metrics.HBMTotalMB = uint64Ptr(info.MemorySize)
	metrics.HBMUsedMB = uint64Ptr(info.MemoryUsage)
	metrics.HBMTempC = float64Ptr(float64(info.Temperature))
	metrics.HBMBusyPct = float64Ptr(float64(info.BandwidthUtilRate))
}

func (r *Reader) applyECC(metrics *Metrics) {
	// HBM parts keep their ECC state there; older DDR-only parts answer for
	// DDR instead.
	info, err := r.chip.ECCInfo(dcmi.ECCDeviceHBM)
	if err != nil {
		info, err = r.chip.ECCInfo(dcmi.ECCDeviceDDR)
	}
	if err != nil {
		r.logger.Debug("ecc query failed", "err", err)
		return
	}
	metrics.ECCSingleBitErrors = uint64Ptr(uint64(info.TotalSingleBitErrorCount))
	metrics.ECCDoubleBitErrors = uint64Ptr(uint64(info.TotalDoubleBitErrorCount))
}

func float64Ptr(value float64) *float64 {
	v := value
	return &v
}

func uint64Ptr(value uint64) *uint64 {
	v := value
	return &v
}
