package dcmi

import (
	"testing"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// fakeRaw implements raw.Interface with optional per-call hooks. Every call
// is recorded by method name; hooks left nil answer with zero records and
// status 0.
type fakeRaw struct {
	calls []string

	init            func() int32
	dcmiVersion     func() ([raw.DCMIVersionLen]byte, int32)
	driverVersion   func() ([raw.DriverVersionLen]byte, int32)
	version         func(cardID, chipID int32) ([raw.DriverVersionLen]byte, int32, int32)
	cardList        func() (int32, [raw.CardListLen]int32, int32)
	deviceNumInCard func(cardID int32) (int32, int32)
	deviceIDInCard  func(cardID int32) (int32, int32, int32, int32)
	deviceType      func(cardID, chipID int32) (int32, int32)
	chipInfo        func(cardID, chipID int32) (raw.ChipInfo, int32)
	pcieInfo        func(cardID, chipID int32) (raw.PCIEInfo, int32)
	pcieInfoV2      func(cardID, chipID int32) (raw.PCIEInfoV2, int32)
	boardInfo       func(cardID, chipID int32) (raw.BoardInfo, int32)
	elabelInfo      func(cardID, chipID int32) (raw.ELabelInfo, int32)
	powerInfo       func(cardID, chipID int32) (int32, int32)
	die             func(cardID, chipID, dieType int32) (raw.DieID, int32)
	health          func(cardID, chipID int32) (uint32, int32)
	errorCodes      func(cardID, chipID int32) (int32, [raw.ErrorCodeListLen]uint32, int32)
	errorString     func(cardID, chipID int32, code, bufLen uint32) ([raw.ErrorStringLen]byte, int32)
	flashCount      func(cardID, chipID int32) (uint32, int32)
	flashInfo       func(cardID, chipID int32, flashID uint32) (raw.FlashInfo, int32)
	aicoreInfo      func(cardID, chipID int32) (raw.AICoreInfo, int32)
	aicpuInfo       func(cardID, chipID int32) (raw.AICPUInfo, int32)
	systemTime      func(cardID, chipID int32) (uint32, int32)
	temperature     func(cardID, chipID int32) (int32, int32)
	voltage         func(cardID, chipID int32) (uint32, int32)
	pcieErrorCount  func(cardID, chipID int32) (raw.PCIEErrRate, int32)
	eccInfo         func(cardID, chipID, deviceType int32) (raw.ECCInfo, int32)
	frequency       func(cardID, chipID, freqType int32) (uint32, int32)
	hbmInfo         func(cardID, chipID int32) (raw.HBMInfo, int32)
	memoryInfo      func(cardID, chipID int32) (raw.MemoryInfo, int32)
	utilizationRate func(cardID, chipID, utilType int32) (uint32, int32)
	createVDevice   func(cardID, chipID int32, res raw.VDevResource) (raw.VDevOutput, int32)
	destroyVDevice  func(cardID, chipID int32, vdevID uint32) int32
}

var _ raw.Interface = (*fakeRaw)(nil)

func (f *fakeRaw) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeRaw) countCalls(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeRaw) Init() int32 {
	f.record("Init")
	if f.init != nil {
		return f.init()
	}
	return raw.StatusOK
}

func (f *fakeRaw) GetDCMIVersion() ([raw.DCMIVersionLen]byte, int32) {
	f.record("GetDCMIVersion")
	if f.dcmiVersion != nil {
		return f.dcmiVersion()
	}
	return [raw.DCMIVersionLen]byte{}, raw.StatusOK
}

func (f *fakeRaw) GetDriverVersion() ([raw.DriverVersionLen]byte, int32) {
	f.record("GetDriverVersion")
	if f.driverVersion != nil {
		return f.driverVersion()
	}
	return [raw.DriverVersionLen]byte{}, raw.StatusOK
}

func (f *fakeRaw) GetVersion(cardID, chipID int32) ([raw.DriverVersionLen]byte, int32, int32) {
	f.record("GetVersion")
	if f.version != nil {
		return f.version(cardID, chipID)
	}
	return [raw.DriverVersionLen]byte{}, 0, raw.StatusOK
}

func (f *fakeRaw) GetCardList() (int32, [raw.CardListLen]int32, int32) {
	f.record("GetCardList")
	if f.cardList != nil {
		return f.cardList()
	}
	return 0, [raw.CardListLen]int32{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceNumInCard(cardID int32) (int32, int32) {
	f.record("GetDeviceNumInCard")
	if f.deviceNumInCard != nil {
		return f.deviceNumInCard(cardID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	f.record("GetDeviceIDInCard")
	if f.deviceIDInCard != nil {
		return f.deviceIDInCard(cardID)
	}
	return 0, raw.ChipAbsent, raw.ChipAbsent, raw.StatusOK
}

func (f *fakeRaw) GetDeviceType(cardID, chipID int32) (int32, int32) {
	f.record("GetDeviceType")
	if f.deviceType != nil {
		return f.deviceType(cardID, chipID)
	}
	return raw.UnitNPU, raw.StatusOK
}

func (f *fakeRaw) GetDeviceChipInfo(cardID, chipID int32) (raw.ChipInfo, int32) {
	f.record("GetDeviceChipInfo")
	if f.chipInfo != nil {
		return f.chipInfo(cardID, chipID)
	}
	return raw.ChipInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDevicePCIEInfo(cardID, chipID int32) (raw.PCIEInfo, int32) {
	f.record("GetDevicePCIEInfo")
	if f.pcieInfo != nil {
		return f.pcieInfo(cardID, chipID)
	}
	return raw.PCIEInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDevicePCIEInfoV2(cardID, chipID int32) (raw.PCIEInfoV2, int32) {
	f.record("GetDevicePCIEInfoV2")
	if f.pcieInfoV2 != nil {
		return f.pcieInfoV2(cardID, chipID)
	}
	return raw.PCIEInfoV2{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceBoardInfo(cardID, chipID int32) (raw.BoardInfo, int32) {
	f.record("GetDeviceBoardInfo")
	if f.boardInfo != nil {
		return f.boardInfo(cardID, chipID)
	}
	return raw.BoardInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceELabelInfo(cardID, chipID int32) (raw.ELabelInfo, int32) {
	f.record("GetDeviceELabelInfo")
	if f.elabelInfo != nil {
		return f.elabelInfo(cardID, chipID)
	}
	return raw.ELabelInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	f.record("GetDevicePowerInfo")
	if f.powerInfo != nil {
		return f.powerInfo(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceDie(cardID, chipID, dieType int32) (raw.DieID, int32) {
	f.record("GetDeviceDie")
	if f.die != nil {
		return f.die(cardID, chipID, dieType)
	}
	return raw.DieID{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceHealth(cardID, chipID int32) (uint32, int32) {
	f.record("GetDeviceHealth")
	if f.health != nil {
		return f.health(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceErrorCodes(cardID, chipID int32) (int32, [raw.ErrorCodeListLen]uint32, int32) {
	f.record("GetDeviceErrorCodes")
	if f.errorCodes != nil {
		return f.errorCodes(cardID, chipID)
	}
	return 0, [raw.ErrorCodeListLen]uint32{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceErrorString(cardID, chipID int32, code, bufLen uint32) ([raw.ErrorStringLen]byte, int32) {
	f.record("GetDeviceErrorString")
	if f.errorString != nil {
		return f.errorString(cardID, chipID, code, bufLen)
	}
	return [raw.ErrorStringLen]byte{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceFlashCount(cardID, chipID int32) (uint32, int32) {
	f.record("GetDeviceFlashCount")
	if f.flashCount != nil {
		return f.flashCount(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (raw.FlashInfo, int32) {
	f.record("GetDeviceFlashInfo")
	if f.flashInfo != nil {
		return f.flashInfo(cardID, chipID, flashID)
	}
	return raw.FlashInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceAICoreInfo(cardID, chipID int32) (raw.AICoreInfo, int32) {
	f.record("GetDeviceAICoreInfo")
	if f.aicoreInfo != nil {
		return f.aicoreInfo(cardID, chipID)
	}
	return raw.AICoreInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceAICPUInfo(cardID, chipID int32) (raw.AICPUInfo, int32) {
	f.record("GetDeviceAICPUInfo")
	if f.aicpuInfo != nil {
		return f.aicpuInfo(cardID, chipID)
	}
	return raw.AICPUInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceSystemTime(cardID, chipID int32) (uint32, int32) {
	f.record("GetDeviceSystemTime")
	if f.systemTime != nil {
		return f.systemTime(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceTemperature(cardID, chipID int32) (int32, int32) {
	f.record("GetDeviceTemperature")
	if f.temperature != nil {
		return f.temperature(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceVoltage(cardID, chipID int32) (uint32, int32) {
	f.record("GetDeviceVoltage")
	if f.voltage != nil {
		return f.voltage(cardID, chipID)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDevicePCIEErrorCount(cardID, chipID int32) (raw.PCIEErrRate, int32) {
	f.record("GetDevicePCIEErrorCount")
	if f.pcieErrorCount != nil {
		return f.pcieErrorCount(cardID, chipID)
	}
	return raw.PCIEErrRate{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceECCInfo(cardID, chipID, deviceType int32) (raw.ECCInfo, int32) {
	f.record("GetDeviceECCInfo")
	if f.eccInfo != nil {
		return f.eccInfo(cardID, chipID, deviceType)
	}
	return raw.ECCInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceFrequency(cardID, chipID, freqType int32) (uint32, int32) {
	f.record("GetDeviceFrequency")
	if f.frequency != nil {
		return f.frequency(cardID, chipID, freqType)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) GetDeviceHBMInfo(cardID, chipID int32) (raw.HBMInfo, int32) {
	f.record("GetDeviceHBMInfo")
	if f.hbmInfo != nil {
		return f.hbmInfo(cardID, chipID)
	}
	return raw.HBMInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceMemoryInfo(cardID, chipID int32) (raw.MemoryInfo, int32) {
	f.record("GetDeviceMemoryInfo")
	if f.memoryInfo != nil {
		return f.memoryInfo(cardID, chipID)
	}
	return raw.MemoryInfo{}, raw.StatusOK
}

func (f *fakeRaw) GetDeviceUtilizationRate(cardID, chipID, utilType int32) (uint32, int32) {
	f.record("GetDeviceUtilizationRate")
	if f.utilizationRate != nil {
		return f.utilizationRate(cardID, chipID, utilType)
	}
	return 0, raw.StatusOK
}

func (f *fakeRaw) CreateVDevice(cardID, chipID int32, res raw.VDevResource) (raw.VDevOutput, int32) {
	f.record("CreateVDevice")
	if f.createVDevice != nil {
		return f.createVDevice(cardID, chipID, res)
	}
	return raw.VDevOutput{}, raw.StatusOK
}

func (f *fakeRaw) DestroyVDevice(cardID, chipID int32, vdevID uint32) int32 {
	f.record("DestroyVDevice")
	if f.destroyVDevice != nil {
		return f.destroyVDevice(cardID, chipID, vdevID)
	}
	return raw.StatusOK
}

// newFakeSession opens a session over f, failing the test if init does.
func newFakeSession(t *testing.T, f *fakeRaw) *Session {
	t.Helper()
	s, err := New(WithRawInterface(f))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}
