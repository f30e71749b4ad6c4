package telemetry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/npu-tools/go-dcmi/pkg/dcmi"
	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

func newSession(t *testing.T, ri raw.Interface) *dcmi.Session {
	t.Helper()
	session, err := dcmi.New(dcmi.WithRawInterface(ri))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return session
}

func telemetryChip() *raw.SimChip {
	return &raw.SimChip{
		ID:          0,
		Unit:        raw.UnitNPU,
		Power:       1505,
		Temperature: 65,
		Voltage:     81,
		AICore:      raw.AICoreInfo{Freq: 1800, CurFreq: 1650},
		Memory:      raw.MemoryInfo{MemorySize: 2048, MemoryAvailable: 1024, Utilization: 31},
		HBM:         raw.HBMInfo{MemorySize: 32768, MemoryUsage: 16384, Temp: 70, BandwidthUtilRate: 12},
		ECC:         raw.ECCInfo{EnableFlag: 1, TotalSingleBitErrorCnt: 3, TotalDoubleBitErrorCnt: 1},
		Utilizations: map[int32]uint32{
			raw.UtilAICore: 47,
		},
	}
}

func TestReaderSample(t *testing.T) {
	t.Parallel()

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{{ID: 0, NPUs: []*raw.SimChip{telemetryChip()}}}
	session := newSession(t, sim)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reader := NewReader("card0-chip0", session.CardByID(0).ChipByID(0), logger)

	sample := reader.Sample()
	if sample.DeviceID != "card0-chip0" {
		t.Fatalf("unexpected device id %q", sample.DeviceID)
	}
	if sample.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	assertFloatEqual(t, sample.Metrics.PowerW, 150.5)
	assertFloatEqual(t, sample.Metrics.TempC, 65)
	assertFloatEqual(t, sample.Metrics.VoltageV, 0.81)
	assertFloatEqual(t, sample.Metrics.AICoreFreqMHz, 1800)
	assertFloatEqual(t, sample.Metrics.AICoreCurFreqMHz, 1650)
	assertFloatEqual(t, sample.Metrics.AICoreBusyPct, 47)
	assertFloatEqual(t, sample.Metrics.MemBusyPct, 31)
	assertFloatEqual(t, sample.Metrics.HBMTempC, 70)
	assertFloatEqual(t, sample.Metrics.HBMBusyPct, 12)

	assertUintEqual(t, sample.Metrics.MemTotalMB, 2048)
	assertUintEqual(t, sample.Metrics.MemAvailableMB, 1024)
	assertUintEqual(t, sample.Metrics.HBMTotalMB, 32768)
	assertUintEqual(t, sample.Metrics.HBMUsedMB, 16384)
	assertUintEqual(t, sample.Metrics.ECCSingleBitErrors, 3)
	assertUintEqual(t, sample.Metrics.ECCDoubleBitErrors, 1)
}

func TestReaderSampleMissingDevice(t *testing.T) {
	t.Parallel()

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{{ID: 0, NPUs: []*raw.SimChip{telemetryChip()}}}
	session := newSession(t, sim)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reader := NewReader("card0-chip9", session.CardByID(0).ChipByID(9), logger)

	sample := reader.Sample()
	if sample.DeviceID != "card0-chip9" {
		t.Fatalf("unexpected device id %q", sample.DeviceID)
	}
	if sample.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
	if sample.Metrics.PowerW != nil {
		t.Errorf("expected nil PowerW for missing device")
	}
	if sample.Metrics.TempC != nil {
		t.Errorf("expected nil TempC for missing device")
	}
	if sample.Metrics.MemTotalMB != nil {
		t.Errorf("expected nil MemTotalMB for missing device")
	}
	if sample.Metrics.ECCSingleBitErrors != nil {
		t.Errorf("expected nil ECC counters for missing device")
	}
}

func TestReaderSampleSensorSentinels(t *testing.T) {
	t.Parallel()

	chip := telemetryChip()
	chip.Temperature = raw.ValueInvalid
	chip.Voltage = raw.ValueReadError

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{{ID: 0, NPUs: []*raw.SimChip{chip}}}
	session := newSession(t, sim)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reader := NewReader("card0-chip0", session.CardByID(0).ChipByID(0), logger)

	sample := reader.Sample()
	if sample.Metrics.TempC != nil {
		t.Errorf("expected nil TempC for invalid sensor reading, got %v", *sample.Metrics.TempC)
	}
	if sample.Metrics.VoltageV != nil {
		t.Errorf("expected nil VoltageV for failed sensor reading, got %v", *sample.Metrics.VoltageV)
	}
	// The rest of the sample is unaffected.
	assertFloatEqual(t, sample.Metrics.PowerW, 150.5)
}

type ddrOnlyECC struct {
	*raw.Simulator
}

func (d ddrOnlyECC) GetDeviceECCInfo(cardID, chipID, deviceType int32) (raw.ECCInfo, int32) {
	if deviceType != raw.DeviceTypeDDR {
		return raw.ECCInfo{}, raw.StatusNotSupported
	}
	return d.Simulator.GetDeviceECCInfo(cardID, chipID, deviceType)
}

func TestReaderECCFallsBackToDDR(t *testing.T) {
	t.Parallel()

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{{ID: 0, NPUs: []*raw.SimChip{telemetryChip()}}}
	session := newSession(t, ddrOnlyECC{sim})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reader := NewReader("card0-chip0", session.CardByID(0).ChipByID(0), logger)

	sample := reader.Sample()
	assertUintEqual(t, sample.Metrics.ECCSingleBitErrors, 3)
	assertUintEqual(t, sample.Metrics.ECCDoubleBitErrors, 1)
}

func assertFloatEqual(t *testing.T, value *float64, expected float64) {
	t.Helper()
	if value == nil {
		t.Fatalf("expected float value %.2f, got nil", expected)
	}
	if diff := *value - expected; diff < -0.0001 || diff > 0.0001 {
		t.Fatalf("expected %.2f, got %.4f", expected, *value)
	}
}

func assertUintEqual(t *testing.T, value *uint64, expected uint64) {
	t.Helper()
	if value == nil {
		t.Fatalf("expected uint value %d, got nil", expected)
	}
	if *value != expected {
		t.Fatalf("expected %d, got %d", expected, *value)
	}
}
