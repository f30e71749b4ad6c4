//go:build linux && dcmi_cgo

package raw

/*
#cgo CFLAGS: -I/usr/local/dcmi
#cgo LDFLAGS: -L/usr/local/dcmi -ldcmi

#include <dcmi_interface_api.h>
*/
import "C"

import "unsafe"

// Linked is the link-time backend compiled against the vendor SDK. Building
// it requires dcmi_interface_api.h and libdcmi.so to be installed; it is
// therefore gated behind the dcmi_cgo build tag and NewLinked reports
// unavailability in default builds.
type Linked struct{}

var _ Interface = (*Linked)(nil)

// NewLinked returns the link-time backend.
func NewLinked() (*Linked, error) {
	return &Linked{}, nil
}

// cBytes copies len(dst) bytes from a C buffer into dst.
func cBytes(dst []byte, src unsafe.Pointer) {
	copy(dst, unsafe.Slice((*byte)(src), len(dst)))
}

func (l *Linked) Init() int32 {
	return int32(C.dcmi_init())
}

func (l *Linked) GetDCMIVersion() ([DCMIVersionLen]byte, int32) {
	var buf [DCMIVersionLen]byte
	status := int32(C.dcmi_get_dcmi_version((*C.char)(unsafe.Pointer(&buf[0])), DCMIVersionLen))
	return buf, status
}

func (l *Linked) GetDriverVersion() ([DriverVersionLen]byte, int32) {
	var buf [DriverVersionLen]byte
	status := int32(C.dcmi_get_driver_version((*C.char)(unsafe.Pointer(&buf[0])), DriverVersionLen))
	return buf, status
}

func (l *Linked) GetVersion(cardID, chipID int32) ([DriverVersionLen]byte, int32, int32) {
	var (
		buf    [DriverVersionLen]byte
		length C.int
	)
	status := int32(C.dcmi_get_version(C.int(cardID), C.int(chipID),
		(*C.char)(unsafe.Pointer(&buf[0])), DriverVersionLen, &length))
	return buf, int32(length), status
}

func (l *Linked) GetCardList() (int32, [CardListLen]int32, int32) {
	var (
		count C.int
		cIDs  [CardListLen]C.int
	)
	status := int32(C.dcmi_get_card_list(&count, &cIDs[0], CardListLen))
	var ids [CardListLen]int32
	for i := range cIDs {
		ids[i] = int32(cIDs[i])
	}
	return int32(count), ids, status
}

func (l *Linked) GetDeviceNumInCard(cardID int32) (int32, int32) {
	var count C.int
	status := int32(C.dcmi_get_device_num_in_card(C.int(cardID), &count))
	return int32(count), status
}

func (l *Linked) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	var deviceIDMax, mcuID, cpuID C.int
	status := int32(C.dcmi_get_device_id_in_card(C.int(cardID), &deviceIDMax, &mcuID, &cpuID))
	return int32(deviceIDMax), int32(mcuID), int32(cpuID), status
}

func (l *Linked) GetDeviceType(cardID, chipID int32) (int32, int32) {
	var unitType C.enum_dcmi_unit_type
	status := int32(C.dcmi_get_device_type(C.int(cardID), C.int(chipID), &unitType))
	return int32(unitType), status
}

func (l *Linked) GetDeviceChipInfo(cardID, chipID int32) (ChipInfo, int32) {
	var cInfo C.struct_dcmi_chip_info
	status := int32(C.dcmi_get_device_chip_info(C.int(cardID), C.int(chipID), &cInfo))
	var info ChipInfo
	cBytes(info.ChipType[:], unsafe.Pointer(&cInfo.chip_type[0]))
	cBytes(info.ChipName[:], unsafe.Pointer(&cInfo.chip_name[0]))
	cBytes(info.ChipVer[:], unsafe.Pointer(&cInfo.chip_ver[0]))
	info.AICoreCnt = uint32(cInfo.aicore_cnt)
	return info, status
}

func (l *Linked) GetDevicePCIEInfo(cardID, chipID int32) (PCIEInfo, int32) {
	var cInfo C.struct_dcmi_pcie_info
	status := int32(C.dcmi_get_device_pcie_info(C.int(cardID), C.int(chipID), &cInfo))
	return PCIEInfo{
		VenderID:    uint32(cInfo.venderid),
		SubvenderID: uint32(cInfo.subvenderid),
		DeviceID:    uint32(cInfo.deviceid),
		SubdeviceID: uint32(cInfo.subdeviceid),
		BDFDeviceID: uint32(cInfo.bdf_deviceid),
		BDFBusID:    uint32(cInfo.bdf_busid),
		BDFFuncID:   uint32(cInfo.bdf_funcid),
	}, status
}

func (l *Linked) GetDevicePCIEInfoV2(cardID, chipID int32) (PCIEInfoV2, int32) {
	var cInfo C.struct_dcmi_pcie_info_all
	status := int32(C.dcmi_get_device_pcie_info_v2(C.int(cardID), C.int(chipID), &cInfo))
	return PCIEInfoV2{
		PCIEInfo: PCIEInfo{
			VenderID:    uint32(cInfo.venderid),
			SubvenderID: uint32(cInfo.subvenderid),
			DeviceID:    uint32(cInfo.deviceid),
			SubdeviceID: uint32(cInfo.subdeviceid),
			BDFDeviceID: uint32(cInfo.bdf_deviceid),
			BDFBusID:    uint32(cInfo.bdf_busid),
			BDFFuncID:   uint32(cInfo.bdf_funcid),
		},
		Domain: int32(cInfo.domain),
	}, status
}

func (l *Linked) GetDeviceBoardInfo(cardID, chipID int32) (BoardInfo, int32) {
	var cInfo C.struct_dcmi_board_info
	status := int32(C.dcmi_get_device_board_info(C.int(cardID), C.int(chipID), &cInfo))
	return BoardInfo{
		BoardID: uint32(cInfo.board_id),
		PCBID:   uint32(cInfo.pcb_id),
		BOMID:   uint32(cInfo.bom_id),
		SlotID:  uint32(cInfo.slot_id),
	}, status
}

func (l *Linked) GetDeviceELabelInfo(cardID, chipID int32) (ELabelInfo, int32) {
	var cInfo C.struct_dcmi_elabel_info
	status := int32(C.dcmi_get_device_elabel_info(C.int(cardID), C.int(chipID), &cInfo))
	var info ELabelInfo
	cBytes(info.ProductName[:], unsafe.Pointer(&cInfo.product_name[0]))
	cBytes(info.Model[:], unsafe.Pointer(&cInfo.model[0]))
	cBytes(info.Manufacturer[:], unsafe.Pointer(&cInfo.manufacturer[0]))
	cBytes(info.SerialNumber[:], unsafe.Pointer(&cInfo.serial_number[0]))
	return info, status
}

func (l *Linked) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	var power C.int
	status := int32(C.dcmi_get_device_power_info(C.int(cardID), C.int(chipID), &power))
	return int32(power), status
}

func (l *Linked) GetDeviceDie(cardID, chipID, dieType int32) (DieID, int32) {
	var cDie C.struct_dcmi_die_id
	status := int32(C.dcmi_get_device_die_v2(C.int(cardID), C.int(chipID),
		C.enum_dcmi_die_type(dieType), &cDie))
	var die DieID
	for i := range die.SocDie {
		die.SocDie[i] = uint32(cDie.soc_die[i])
	}
	return die, status
}

func (l *Linked) GetDeviceHealth(cardID, chipID int32) (uint32, int32) {
	var health C.uint
	status := int32(C.dcmi_get_device_health(C.int(cardID), C.int(chipID), &health))
	return uint32(health), status
}

func (l *Linked) GetDeviceErrorCodes(cardID, chipID int32) (int32, [ErrorCodeListLen]uint32, int32) {
	var (
		count  C.int
		cCodes [ErrorCodeListLen]C.uint
	)
	status := int32(C.dcmi_get_device_errorcode_v2(C.int(cardID), C.int(chipID),
		&count, &cCodes[0], ErrorCodeListLen))
	var codes [ErrorCodeListLen]uint32
	for i := range cCodes {
		codes[i] = uint32(cCodes[i])
	}
	return int32(count), codes, status
}

func (l *Linked) GetDeviceErrorString(cardID, chipID int32, code uint32, bufLen uint32) ([ErrorStringLen]byte, int32) {
	var buf [ErrorStringLen]byte
	if bufLen > ErrorStringLen {
		bufLen = ErrorStringLen
	}
	status := int32(C.dcmi_get_device_errorcode_string(C.int(cardID), C.int(chipID),
		C.uint(code), (*C.char)(unsafe.Pointer(&buf[0])), C.uint(bufLen)))
	return buf, status
}

func (l *Linked) GetDeviceFlashCount(cardID, chipID int32) (uint32, int32) {
	var count C.uint
	status := int32(C.dcmi_get_device_flash_count(C.int(cardID), C.int(chipID), &count))
	return uint32(count), status
}

func (l *Linked) GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (FlashInfo, int32) {
	var cInfo C.struct_dcmi_flash_info
	status := int32(C.dcmi_get_device_flash_info_v2(C.int(cardID), C.int(chipID),
		C.uint(flashID), &cInfo))
	return FlashInfo{
		FlashID:        uint64(cInfo.flash_id),
		DeviceID:       uint16(cInfo.device_id),
		Vendor:         uint16(cInfo.vendor),
		State:          uint16(cInfo.state),
		Size:           uint64(cInfo.size),
		SectorCount:    uint32(cInfo.sector_count),
		ManufacturerID: uint16(cInfo.manufacturer_id),
	}, status
}

func (l *Linked) GetDeviceAICoreInfo(cardID, chipID int32) (AICoreInfo, int32) {
	var cInfo C.struct_dcmi_aicore_info
	status := int32(C.dcmi_get_device_aicore_info(C.int(cardID), C.int(chipID), &cInfo))
	return AICoreInfo{
		Freq:    uint32(cInfo.freq),
		CurFreq: uint32(cInfo.cur_freq),
	}, status
}

func (l *Linked) GetDeviceAICPUInfo(cardID, chipID int32) (AICPUInfo, int32) {
	var cInfo C.struct_dcmi_aicpu_info
	status := int32(C.dcmi_get_device_aicpu_info(C.int(cardID), C.int(chipID), &cInfo))
	info := AICPUInfo{
		MaxFreq:  uint32(cInfo.max_freq),
		CurFreq:  uint32(cInfo.cur_freq),
		AICPUNum: uint32(cInfo.aicpu_num),
	}
	for i := range info.UtilRate {
		info.UtilRate[i] = uint32(cInfo.util_rate[i])
	}
	return info, status
}

func (l *Linked) GetDeviceSystemTime(cardID, chipID int32) (uint32, int32) {
	var seconds C.uint
	status := int32(C.dcmi_get_device_system_time(C.int(cardID), C.int(chipID), &seconds))
	return uint32(seconds), status
}

func (l *Linked) GetDeviceTemperature(cardID, chipID int32) (int32, int32) {
	var temperature C.int
	status := int32(C.dcmi_get_device_temperature(C.int(cardID), C.int(chipID), &temperature))
	return int32(temperature), status
}

func (l *Linked) GetDeviceVoltage(cardID, chipID int32) (uint32, int32) {
	var voltage C.uint
	status := int32(C.dcmi_get_device_voltage(C.int(cardID), C.int(chipID), &voltage))
	return uint32(voltage), status
}

func (l *Linked) GetDevicePCIEErrorCount(cardID, chipID int32) (PCIEErrRate, int32) {
	var cRate C.struct_dcmi_chip_pcie_err_rate
	status := int32(C.dcmi_get_device_pcie_error_cnt(C.int(cardID), C.int(chipID), &cRate))
	return PCIEErrRate{
		RegDeskewFIFOOverflowIntrStatus: uint32(cRate.reg_deskew_fifo_overflow_intr_status),
		RegSymbolUnlockIntrStatus:       uint32(cRate.reg_symbol_unlock_intr_status),
		RegDeskewUnlockIntrStatus:       uint32(cRate.reg_deskew_unlock_intr_status),
		RegPhystatusTimeoutIntrStatus:   uint32(cRate.reg_phystatus_timeout_intr_status),
		SymbolUnlockCounter:             uint32(cRate.symbol_unlock_counter),
		PCSRxErrCnt:                     uint32(cRate.pcs_rx_err_cnt),
		PhyLaneErrCounter:               uint32(cRate.phy_lane_err_counter),
		PCSRcvErrStatus:                 uint32(cRate.pcs_rcv_err_status),
		SymbolUnlockErrStatus:           uint32(cRate.symbol_unlock_err_status),
		PhyLaneErrStatus:                uint32(cRate.phy_lane_err_status),
		DLLCRCErrNum:                    uint32(cRate.dl_lcrc_err_num),
		DLDCRCErrNum:                    uint32(cRate.dl_dcrc_err_num),
	}, status
}

func (l *Linked) GetDeviceECCInfo(cardID, chipID, deviceType int32) (ECCInfo, int32) {
	var cInfo C.struct_dcmi_ecc_info
	status := int32(C.dcmi_get_device_ecc_info(C.int(cardID), C.int(chipID),
		C.enum_dcmi_device_type(deviceType), &cInfo))
	return ECCInfo{
		EnableFlag:                int32(cInfo.enable_flag),
		SingleBitErrorCnt:         uint32(cInfo.single_bit_error_cnt),
		DoubleBitErrorCnt:         uint32(cInfo.double_bit_error_cnt),
		TotalSingleBitErrorCnt:    uint32(cInfo.total_single_bit_error_cnt),
		TotalDoubleBitErrorCnt:    uint32(cInfo.total_double_bit_error_cnt),
		SingleBitIsolatedPagesCnt: uint32(cInfo.single_bit_isolated_pages_cnt),
		DoubleBitIsolatedPagesCnt: uint32(cInfo.double_bit_isolated_pages_cnt),
	}, status
}

func (l *Linked) GetDeviceFrequency(cardID, chipID, freqType int32) (uint32, int32) {
	var frequency C.uint
	status := int32(C.dcmi_get_device_frequency(C.int(cardID), C.int(chipID),
		C.enum_dcmi_freq_type(freqType), &frequency))
	return uint32(frequency), status
}

func (l *Linked) GetDeviceHBMInfo(cardID, chipID int32) (HBMInfo, int32) {
	var cInfo C.struct_dcmi_hbm_info
	status := int32(C.dcmi_get_device_hbm_info(C.int(cardID), C.int(chipID), &cInfo))
	return HBMInfo{
		MemorySize:        uint64(cInfo.memory_size),
		Freq:              uint32(cInfo.freq),
		MemoryUsage:       uint64(cInfo.memory_usage),
		Temp:              int32(cInfo.temp),
		BandwidthUtilRate: uint32(cInfo.bandwith_util_rate),
	}, status
}

func (l *Linked) GetDeviceMemoryInfo(cardID, chipID int32) (MemoryInfo, int32) {
	var cInfo C.struct_dcmi_get_memory_info_stru
	status := int32(C.dcmi_get_device_memory_info_v3(C.int(cardID), C.int(chipID), &cInfo))
	return MemoryInfo{
		MemorySize:      uint64(cInfo.memory_size),
		MemoryAvailable: uint64(cInfo.memory_available),
		Freq:            uint32(cInfo.freq),
		HugePageSize:    uint64(cInfo.hugepagesize),
		HugePagesTotal:  uint64(cInfo.hugepages_total),
		HugePagesFree:   uint64(cInfo.hugepages_free),
		Utilization:     uint32(cInfo.utiliza),
	}, status
}

func (l *Linked) GetDeviceUtilizationRate(cardID, chipID, utilType int32) (uint32, int32) {
	var rate C.uint
	status := int32(C.dcmi_get_device_utilization_rate(C.int(cardID), C.int(chipID),
		C.int(utilType), &rate))
	return uint32(rate), status
}

func (l *Linked) CreateVDevice(cardID, chipID int32, res VDevResource) (VDevOutput, int32) {
	var cRes C.struct_dcmi_create_vdev_res_stru
	cRes.vdev_id = C.uint(res.VDevID)
	cRes.vfg_id = C.uint(res.VFGID)
	for i, b := range res.TemplateName {
		cRes.template_name[i] = C.char(b)
	}

	var cOut C.struct_dcmi_create_vdev_out
	status := int32(C.dcmi_create_vdevice(C.int(cardID), C.int(chipID), &cRes, &cOut))
	return VDevOutput{
		VDevID:     uint32(cOut.vdev_id),
		PCIEBus:    uint32(cOut.pcie_bus),
		PCIEDevice: uint32(cOut.pcie_device),
		PCIEFunc:   uint32(cOut.pcie_func),
		VFGID:      uint32(cOut.vfg_id),
	}, status
}

func (l *Linked) DestroyVDevice(cardID, chipID int32, vdevID uint32) int32 {
	return int32(C.dcmi_set_destroy_vdevice(C.int(cardID), C.int(chipID), C.uint(vdevID)))
}
