//go:build linux

package raw

import (
	"fmt"
	"path/filepath"

	"github.com/ebitengine/purego"
)

// Dynamic is the runtime-loaded backend. It dlopens libdcmi.so from the
// configured directory and resolves every symbol eagerly, so a library that
// is too old to export the full surface is rejected at construction time
// instead of failing on first use.
type Dynamic struct {
	handle uintptr

	dcmiInit                 func() int32
	getDCMIVersion           func(buf *byte, bufLen uint32) int32
	getDriverVersion         func(buf *byte, bufLen uint32) int32
	getVersion               func(cardID, chipID int32, buf *byte, bufLen uint32, verLen *int32) int32
	getCardList              func(count *int32, ids *int32, listLen int32) int32
	getDeviceNumInCard       func(cardID int32, count *int32) int32
	getDeviceIDInCard        func(cardID int32, deviceIDMax, mcuID, cpuID *int32) int32
	getDeviceType            func(cardID, chipID int32, unitType *int32) int32
	getDeviceChipInfo        func(cardID, chipID int32, info *ChipInfo) int32
	getDevicePCIEInfo        func(cardID, chipID int32, info *PCIEInfo) int32
	getDevicePCIEInfoV2      func(cardID, chipID int32, info *PCIEInfoV2) int32
	getDeviceBoardInfo       func(cardID, chipID int32, info *BoardInfo) int32
	getDeviceELabelInfo      func(cardID, chipID int32, info *ELabelInfo) int32
	getDevicePowerInfo       func(cardID, chipID int32, power *int32) int32
	getDeviceDie             func(cardID, chipID, dieType int32, die *DieID) int32
	getDeviceHealth          func(cardID, chipID int32, health *uint32) int32
	getDeviceErrorCodes      func(cardID, chipID int32, count *int32, codes *uint32, listLen uint32) int32
	getDeviceErrorString     func(cardID, chipID int32, code uint32, buf *byte, bufLen uint32) int32
	getDeviceFlashCount      func(cardID, chipID int32, count *uint32) int32
	getDeviceFlashInfo       func(cardID, chipID int32, flashID uint32, info *FlashInfo) int32
	getDeviceAICoreInfo      func(cardID, chipID int32, info *AICoreInfo) int32
	getDeviceAICPUInfo       func(cardID, chipID int32, info *AICPUInfo) int32
	getDeviceSystemTime      func(cardID, chipID int32, seconds *uint32) int32
	getDeviceTemperature     func(cardID, chipID int32, temperature *int32) int32
	getDeviceVoltage         func(cardID, chipID int32, voltage *uint32) int32
	getDevicePCIEErrorCount  func(cardID, chipID int32, rate *PCIEErrRate) int32
	getDeviceECCInfo         func(cardID, chipID, deviceType int32, info *ECCInfo) int32
	getDeviceFrequency       func(cardID, chipID, freqType int32, frequency *uint32) int32
	getDeviceHBMInfo         func(cardID, chipID int32, info *HBMInfo) int32
	getDeviceMemoryInfo      func(cardID, chipID int32, info *MemoryInfo) int32
	getDeviceUtilizationRate func(cardID, chipID, utilType int32, rate *uint32) int32
	createVDevice            func(cardID, chipID int32, res *VDevResource, out *VDevOutput) int32
	destroyVDevice           func(cardID, chipID int32, vdevID uint32) int32
}

var _ Interface = (*Dynamic)(nil)

// NewDynamic loads libdcmi.so from dir. An empty dir falls back to
// DefaultLibraryDir. The returned backend has not called dcmi_init yet.
func NewDynamic(dir string) (*Dynamic, error) {
	if dir == "" {
		dir = DefaultLibraryDir
	}
	path := filepath.Join(dir, LibraryName)

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	d := &Dynamic{handle: handle}
	for _, entry := range []struct {
		fptr any
		name string
	}{
		{&d.dcmiInit, "dcmi_init"},
		{&d.getDCMIVersion, "dcmi_get_dcmi_version"},
		{&d.getDriverVersion, "dcmi_get_driver_version"},
		{&d.getVersion, "dcmi_get_version"},
		{&d.getCardList, "dcmi_get_card_list"},
		{&d.getDeviceNumInCard, "dcmi_get_device_num_in_card"},
		{&d.getDeviceIDInCard, "dcmi_get_device_id_in_card"},
		{&d.getDeviceType, "dcmi_get_device_type"},
		{&d.getDeviceChipInfo, "dcmi_get_device_chip_info"},
		{&d.getDevicePCIEInfo, "dcmi_get_device_pcie_info"},
		{&d.getDevicePCIEInfoV2, "dcmi_get_device_pcie_info_v2"},
		{&d.getDeviceBoardInfo, "dcmi_get_device_board_info"},
		{&d.getDeviceELabelInfo, "dcmi_get_device_elabel_info"},
		{&d.getDevicePowerInfo, "dcmi_get_device_power_info"},
		{&d.getDeviceDie, "dcmi_get_device_die_v2"},
		{&d.getDeviceHealth, "dcmi_get_device_health"},
		{&d.getDeviceErrorCodes, "dcmi_get_device_errorcode_v2"},
		{&d.getDeviceErrorString, "dcmi_get_device_errorcode_string"},
		{&d.getDeviceFlashCount, "dcmi_get_device_flash_count"},
		{&d.getDeviceFlashInfo, "dcmi_get_device_flash_info_v2"},
		{&d.getDeviceAICoreInfo, "dcmi_get_device_aicore_info"},
		{&d.getDeviceAICPUInfo, "dcmi_get_device_aicpu_info"},
		{&d.getDeviceSystemTime, "dcmi_get_device_system_time"},
		{&d.getDeviceTemperature, "dcmi_get_device_temperature"},
		{&d.getDeviceVoltage, "dcmi_get_device_voltage"},
		{&d.getDevicePCIEErrorCount, "dcmi_get_device_pcie_error_cnt"},
		{&d.getDeviceECCInfo, "dcmi_get_device_ecc_info"},
		{&d.getDeviceFrequency, "dcmi_get_device_frequency"},
		{&d.getDeviceHBMInfo, "dcmi_get_device_hbm_info"},
		{&d.getDeviceMemoryInfo, "dcmi_get_device_memory_info_v3"},
		{&d.getDeviceUtilizationRate, "dcmi_get_device_utilization_rate"},
		{&d.createVDevice, "dcmi_create_vdevice"},
		{&d.destroyVDevice, "dcmi_set_destroy_vdevice"},
	} {
		sym, err := purego.Dlsym(handle, entry.name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s in %s: %w", entry.name, path, err)
		}
		purego.RegisterFunc(entry.fptr, sym)
	}
	return d, nil
}

func (d *Dynamic) Init() int32 {
	return d.dcmiInit()
}

func (d *Dynamic) GetDCMIVersion() ([DCMIVersionLen]byte, int32) {
	var buf [DCMIVersionLen]byte
	status := d.getDCMIVersion(&buf[0], DCMIVersionLen)
	return buf, status
}

func (d *Dynamic) GetDriverVersion() ([DriverVersionLen]byte, int32) {
	var buf [DriverVersionLen]byte
	status := d.getDriverVersion(&buf[0], DriverVersionLen)
	return buf, status
}

func (d *Dynamic) GetVersion(cardID, chipID int32) ([DriverVersionLen]byte, int32, int32) {
	var (
		buf    [DriverVersionLen]byte
		length int32
	)
	status := d.getVersion(cardID, chipID, &buf[0], DriverVersionLen, &length)
	return buf, length, status
}

func (d *Dynamic) GetCardList() (int32, [CardListLen]int32, int32) {
	var (
		count int32
		ids   [CardListLen]int32
	)
	status := d.getCardList(&count, &ids[0], CardListLen)
	return count, ids, status
}

func (d *Dynamic) GetDeviceNumInCard(cardID int32) (int32, int32) {
	var count int32
	status := d.getDeviceNumInCard(cardID, &count)
	return count, status
}

func (d *Dynamic) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	var deviceIDMax, mcuID, cpuID int32
	status := d.getDeviceIDInCard(cardID, &deviceIDMax, &mcuID, &cpuID)
	return deviceIDMax, mcuID, cpuID, status
}

func (d *Dynamic) GetDeviceType(cardID, chipID int32) (int32, int32) {
	var unitType int32
	status := d.getDeviceType(cardID, chipID, &unitType)
	return unitType, status
}

func (d *Dynamic) GetDeviceChipInfo(cardID, chipID int32) (ChipInfo, int32) {
	var info ChipInfo
	status := d.getDeviceChipInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDevicePCIEInfo(cardID, chipID int32) (PCIEInfo, int32) {
	var info PCIEInfo
	status := d.getDevicePCIEInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDevicePCIEInfoV2(cardID, chipID int32) (PCIEInfoV2, int32) {
	var info PCIEInfoV2
	status := d.getDevicePCIEInfoV2(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceBoardInfo(cardID, chipID int32) (BoardInfo, int32) {
	var info BoardInfo
	status := d.getDeviceBoardInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceELabelInfo(cardID, chipID int32) (ELabelInfo, int32) {
	var info ELabelInfo
	status := d.getDeviceELabelInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	var power int32
	status := d.getDevicePowerInfo(cardID, chipID, &power)
	return power, status
}

func (d *Dynamic) GetDeviceDie(cardID, chipID, dieType int32) (DieID, int32) {
	var die DieID
	status := d.getDeviceDie(cardID, chipID, dieType, &die)
	return die, status
}

func (d *Dynamic) GetDeviceHealth(cardID, chipID int32) (uint32, int32) {
	var health uint32
	status := d.getDeviceHealth(cardID, chipID, &health)
	return health, status
}

func (d *Dynamic) GetDeviceErrorCodes(cardID, chipID int32) (int32, [ErrorCodeListLen]uint32, int32) {
	var (
		count int32
		codes [ErrorCodeListLen]uint32
	)
	status := d.getDeviceErrorCodes(cardID, chipID, &count, &codes[0], ErrorCodeListLen)
	return count, codes, status
}

func (d *Dynamic) GetDeviceErrorString(cardID, chipID int32, code uint32, bufLen uint32) ([ErrorStringLen]byte, int32) {
	var buf [ErrorStringLen]byte
	if bufLen > ErrorStringLen {
		bufLen = ErrorStringLen
	}
	status := d.getDeviceErrorString(cardID, chipID, code, &buf[0], bufLen)
	return buf, status
}

func (d *Dynamic) GetDeviceFlashCount(cardID, chipID int32) (uint32, int32) {
	var count uint32
	status := d.getDeviceFlashCount(cardID, chipID, &count)
	return count, status
}

func (d *Dynamic) GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (FlashInfo, int32) {
	var info FlashInfo
	status := d.getDeviceFlashInfo(cardID, chipID, flashID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceAICoreInfo(cardID, chipID int32) (AICoreInfo, int32) {
	var info AICoreInfo
	status := d.getDeviceAICoreInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceAICPUInfo(cardID, chipID int32) (AICPUInfo, int32) {
	var info AICPUInfo
	status := d.getDeviceAICPUInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceSystemTime(cardID, chipID int32) (uint32, int32) {
	var seconds uint32
	status := d.getDeviceSystemTime(cardID, chipID, &seconds)
	return seconds, status
}

func (d *Dynamic) GetDeviceTemperature(cardID, chipID int32) (int32, int32) {
	var temperature int32
	status := d.getDeviceTemperature(cardID, chipID, &temperature)
	return temperature, status
}

func (d *Dynamic) GetDeviceVoltage(cardID, chipID int32) (uint32, int32) {
	var voltage uint32
	status := d.getDeviceVoltage(cardID, chipID, &voltage)
	return voltage, status
}

func (d *Dynamic) GetDevicePCIEErrorCount(cardID, chipID int32) (PCIEErrRate, int32) {
	var rate PCIEErrRate
	status := d.getDevicePCIEErrorCount(cardID, chipID, &rate)
	return rate, status
}

func (d *Dynamic) GetDeviceECCInfo(cardID, chipID, deviceType int32) (ECCInfo, int32) {
	var info ECCInfo
	status := d.getDeviceECCInfo(cardID, chipID, deviceType, &info)
	return info, status
}

func (d *Dynamic) GetDeviceFrequency(cardID, chipID, freqType int32) (uint32, int32) {
	var frequency uint32
	status := d.getDeviceFrequency(cardID, chipID, freqType, &frequency)
	return frequency, status
}

func (d *Dynamic) GetDeviceHBMInfo(cardID, chipID int32) (HBMInfo, int32) {
	var info HBMInfo
	status := d.getDeviceHBMInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceMemoryInfo(cardID, chipID int32) (MemoryInfo, int32) {
	var info MemoryInfo
	status := d.getDeviceMemoryInfo(cardID, chipID, &info)
	return info, status
}

func (d *Dynamic) GetDeviceUtilizationRate(cardID, chipID, utilType int32) (uint32, int32) {
	var rate uint32
	status := d.getDeviceUtilizationRate(cardID, chipID, utilType, &rate)
	return rate, status
}

func (d *Dynamic) CreateVDevice(cardID, chipID int32, res VDevResource) (VDevOutput, int32) {
	var out VDevOutput
	status := d.createVDevice(cardID, chipID, &res, &out)
	return out, status
}

func (d *Dynamic) DestroyVDevice(cardID, chipID int32, vdevID uint32) int32 {
	return d.destroyVDevice(cardID, chipID, vdevID)
}
