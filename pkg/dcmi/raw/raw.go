// Package raw exposes the unprocessed call surface of the DCMI library,
// Huawei's management interface for Ascend accelerator cards.
//
// Every method corresponds to exactly one dcmi_* function and returns the
// library's output records together with the raw int32 status code; nothing
// here interprets results. Output records are zero-initialized before each
// call, matching the zero-filled out-parameter contract of the C API. Two
// interchangeable backends implement the surface: a runtime-loaded one built
// on dlopen (NewDynamic) and a link-time one compiled against the vendor SDK
// (NewLinked, available behind the dcmi_cgo build tag). Callers wanting typed
// results should use the dcmi package instead.
package raw

// Interface is the raw DCMI call surface. Implementations must guarantee
// that Init succeeded before any other method is used; the higher layers
// enforce this by construction.
type Interface interface {
	// Init wraps dcmi_init.
	Init() int32

	// GetDCMIVersion wraps dcmi_get_dcmi_version.
	GetDCMIVersion() (ver [DCMIVersionLen]byte, status int32)
	// GetDriverVersion wraps dcmi_get_driver_version.
	GetDriverVersion() (ver [DriverVersionLen]byte, status int32)
	// GetVersion wraps dcmi_get_version, the deprecated per-device driver
	// version query. length is the number of meaningful bytes in ver.
	GetVersion(cardID, chipID int32) (ver [DriverVersionLen]byte, length int32, status int32)

	// GetCardList wraps dcmi_get_card_list. Only the first count slots of
	// ids are meaningful.
	GetCardList() (count int32, ids [CardListLen]int32, status int32)
	// GetDeviceNumInCard wraps dcmi_get_device_num_in_card.
	GetDeviceNumInCard(cardID int32) (count int32, status int32)
	// GetDeviceIDInCard wraps dcmi_get_device_id_in_card. deviceIDMax is an
	// exclusive upper bound on NPU chip ids; mcuID and cpuID are ChipAbsent
	// when the respective chip does not exist.
	GetDeviceIDInCard(cardID int32) (deviceIDMax, mcuID, cpuID int32, status int32)
	// GetDeviceType wraps dcmi_get_device_type.
	GetDeviceType(cardID, chipID int32) (unitType int32, status int32)

	// GetDeviceChipInfo wraps dcmi_get_device_chip_info.
	GetDeviceChipInfo(cardID, chipID int32) (ChipInfo, int32)
	// GetDevicePCIEInfo wraps dcmi_get_device_pcie_info.
	GetDevicePCIEInfo(cardID, chipID int32) (PCIEInfo, int32)
	// GetDevicePCIEInfoV2 wraps dcmi_get_device_pcie_info_v2.
	GetDevicePCIEInfoV2(cardID, chipID int32) (PCIEInfoV2, int32)
	// GetDeviceBoardInfo wraps dcmi_get_device_board_info.
	GetDeviceBoardInfo(cardID, chipID int32) (BoardInfo, int32)
	// GetDeviceELabelInfo wraps dcmi_get_device_elabel_info.
	GetDeviceELabelInfo(cardID, chipID int32) (ELabelInfo, int32)
	// GetDevicePowerInfo wraps dcmi_get_device_power_info. The reading is in
	// 0.1 W units.
	GetDevicePowerInfo(cardID, chipID int32) (power int32, status int32)
	// GetDeviceDie wraps dcmi_get_device_die_v2.
	GetDeviceDie(cardID, chipID, dieType int32) (DieID, int32)
	// GetDeviceHealth wraps dcmi_get_device_health.
	GetDeviceHealth(cardID, chipID int32) (health uint32, status int32)
	// GetDeviceErrorCodes wraps dcmi_get_device_errorcode_v2. Only the first
	// count slots of codes are meaningful.
	GetDeviceErrorCodes(cardID, chipID int32) (count int32, codes [ErrorCodeListLen]uint32, status int32)
	// GetDeviceErrorString wraps dcmi_get_device_errorcode_string. bufLen
	// selects how much of the buffer the library may fill
	// (ErrorStringShortLen or ErrorStringLen).
	GetDeviceErrorString(cardID, chipID int32, code uint32, bufLen uint32) (desc [ErrorStringLen]byte, status int32)
	// GetDeviceFlashCount wraps dcmi_get_device_flash_count.
	GetDeviceFlashCount(cardID, chipID int32) (count uint32, status int32)
	// GetDeviceFlashInfo wraps dcmi_get_device_flash_info_v2.
	GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (FlashInfo, int32)
	// GetDeviceAICoreInfo wraps dcmi_get_device_aicore_info.
	GetDeviceAICoreInfo(cardID, chipID int32) (AICoreInfo, int32)
	// GetDeviceAICPUInfo wraps dcmi_get_device_aicpu_info.
	GetDeviceAICPUInfo(cardID, chipID int32) (AICPUInfo, int32)
	// GetDeviceSystemTime wraps dcmi_get_device_system_time. The reading is
	// in seconds since the Unix epoch.
	GetDeviceSystemTime(cardID, chipID int32) (seconds uint32, status int32)
	// GetDeviceTemperature wraps dcmi_get_device_temperature. The reading is
	// in degrees Celsius and may be one of the sentinel values.
	GetDeviceTemperature(cardID, chipID int32) (temperature int32, status int32)
	// GetDeviceVoltage wraps dcmi_get_device_voltage. The reading is in
	// 0.01 V units and may be one of the sentinel values.
	GetDeviceVoltage(cardID, chipID int32) (voltage uint32, status int32)
	// GetDevicePCIEErrorCount wraps dcmi_get_device_pcie_error_cnt.
	GetDevicePCIEErrorCount(cardID, chipID int32) (PCIEErrRate, int32)
	// GetDeviceECCInfo wraps dcmi_get_device_ecc_info.
	GetDeviceECCInfo(cardID, chipID, deviceType int32) (ECCInfo, int32)
	// GetDeviceFrequency wraps dcmi_get_device_frequency. The reading is in
	// MHz.
	GetDeviceFrequency(cardID, chipID, freqType int32) (frequency uint32, status int32)
	// GetDeviceHBMInfo wraps dcmi_get_device_hbm_info.
	GetDeviceHBMInfo(cardID, chipID int32) (HBMInfo, int32)
	// GetDeviceMemoryInfo wraps dcmi_get_device_memory_info_v3.
	GetDeviceMemoryInfo(cardID, chipID int32) (MemoryInfo, int32)
	// GetDeviceUtilizationRate wraps dcmi_get_device_utilization_rate. The
	// reading is in percent.
	GetDeviceUtilizationRate(cardID, chipID, utilType int32) (rate uint32, status int32)

	// CreateVDevice wraps dcmi_create_vdevice.
	CreateVDevice(cardID, chipID int32, res VDevResource) (VDevOutput, int32)
	// DestroyVDevice wraps dcmi_set_destroy_vdevice. VDevDestroyAll removes
	// every virtual device on the chip.
	DestroyVDevice(cardID, chipID int32, vdevID uint32) int32
}
