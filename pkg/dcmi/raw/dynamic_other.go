//go:build !linux

package raw

import "fmt"

// Dynamic is only functional on Linux; the DCMI library ships for no other
// platform.
type Dynamic struct{}

var _ Interface = (*Dynamic)(nil)

// NewDynamic reports that runtime loading is unavailable on this platform.
func NewDynamic(dir string) (*Dynamic, error) {
	return nil, fmt.Errorf("dcmi: dynamic loading is only supported on linux")
}

func (d *Dynamic) Init() int32 { return StatusNotSupported }

func (d *Dynamic) GetDCMIVersion() ([DCMIVersionLen]byte, int32) {
	return [DCMIVersionLen]byte{}, StatusNotSupported
}

func (d *Dynamic) GetDriverVersion() ([DriverVersionLen]byte, int32) {
	return [DriverVersionLen]byte{}, StatusNotSupported
}

func (d *Dynamic) GetVersion(cardID, chipID int32) ([DriverVersionLen]byte, int32, int32) {
	return [DriverVersionLen]byte{}, 0, StatusNotSupported
}

func (d *Dynamic) GetCardList() (int32, [CardListLen]int32, int32) {
	return 0, [CardListLen]int32{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceNumInCard(cardID int32) (int32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	return 0, ChipAbsent, ChipAbsent, StatusNotSupported
}

func (d *Dynamic) GetDeviceType(cardID, chipID int32) (int32, int32) {
	return UnitInvalid, StatusNotSupported
}

func (d *Dynamic) GetDeviceChipInfo(cardID, chipID int32) (ChipInfo, int32) {
	return ChipInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDevicePCIEInfo(cardID, chipID int32) (PCIEInfo, int32) {
	return PCIEInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDevicePCIEInfoV2(cardID, chipID int32) (PCIEInfoV2, int32) {
	return PCIEInfoV2{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceBoardInfo(cardID, chipID int32) (BoardInfo, int32) {
	return BoardInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceELabelInfo(cardID, chipID int32) (ELabelInfo, int32) {
	return ELabelInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceDie(cardID, chipID, dieType int32) (DieID, int32) {
	return DieID{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceHealth(cardID, chipID int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceErrorCodes(cardID, chipID int32) (int32, [ErrorCodeListLen]uint32, int32) {
	return 0, [ErrorCodeListLen]uint32{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceErrorString(cardID, chipID int32, code uint32, bufLen uint32) ([ErrorStringLen]byte, int32) {
	return [ErrorStringLen]byte{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceFlashCount(cardID, chipID int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (FlashInfo, int32) {
	return FlashInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceAICoreInfo(cardID, chipID int32) (AICoreInfo, int32) {
	return AICoreInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceAICPUInfo(cardID, chipID int32) (AICPUInfo, int32) {
	return AICPUInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceSystemTime(cardID, chipID int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceTemperature(cardID, chipID int32) (int32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceVoltage(cardID, chipID int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDevicePCIEErrorCount(cardID, chipID int32) (PCIEErrRate, int32) {
	return PCIEErrRate{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceECCInfo(cardID, chipID, deviceType int32) (ECCInfo, int32) {
	return ECCInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceFrequency(cardID, chipID, freqType int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) GetDeviceHBMInfo(cardID, chipID int32) (HBMInfo, int32) {
	return HBMInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceMemoryInfo(cardID, chipID int32) (MemoryInfo, int32) {
	return MemoryInfo{}, StatusNotSupported
}

func (d *Dynamic) GetDeviceUtilizationRate(cardID, chipID, utilType int32) (uint32, int32) {
	return 0, StatusNotSupported
}

func (d *Dynamic) CreateVDevice(cardID, chipID int32, res VDevResource) (VDevOutput, int32) {
	return VDevOutput{}, StatusNotSupported
}

func (d *Dynamic) DestroyVDevice(cardID, chipID int32, vdevID uint32) int32 {
	return StatusNotSupported
}
