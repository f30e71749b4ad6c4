package raw

// Record layouts mirror the structs in dcmi_interface_api.h byte for byte,
// including the header's field spellings ("vender"). The dynamic backend
// hands pointers to these records straight to the library, so field order
// and widths must not be rearranged.

// ChipInfo is the wire form of struct dcmi_chip_info.
type ChipInfo struct {
	ChipType  [ChipStringLen]byte
	ChipName  [ChipStringLen]byte
	ChipVer   [ChipStringLen]byte
	AICoreCnt uint32
}

// PCIEInfo is the wire form of struct dcmi_pcie_info.
type PCIEInfo struct {
	VenderID    uint32
	SubvenderID uint32
	DeviceID    uint32
	SubdeviceID uint32
	BDFDeviceID uint32
	BDFBusID    uint32
	BDFFuncID   uint32
}

// PCIEInfoV2 is the wire form of struct dcmi_pcie_info_all: the base record
// plus the PCI domain.
type PCIEInfoV2 struct {
	PCIEInfo
	Domain   int32
	Reserved [32]byte
}

// BoardInfo is the wire form of struct dcmi_board_info.
type BoardInfo struct {
	BoardID uint32
	PCBID   uint32
	BOMID   uint32
	SlotID  uint32
}

// ELabelInfo is the wire form of struct dcmi_elabel_info.
type ELabelInfo struct {
	ProductName  [ELabelFieldLen]byte
	Model        [ELabelFieldLen]byte
	Manufacturer [ELabelFieldLen]byte
	SerialNumber [ELabelFieldLen]byte
}

// DieID is the wire form of struct dcmi_die_id.
type DieID struct {
	SocDie [DieIDCount]uint32
}

// FlashInfo is the wire form of struct dcmi_flash_info. State holds the raw
// health register; 0x8 means healthy.
type FlashInfo struct {
	FlashID        uint64
	DeviceID       uint16
	Vendor         uint16
	State          uint16
	Size           uint64
	SectorCount    uint32
	ManufacturerID uint16
}

// AICoreInfo is the wire form of struct dcmi_aicore_info. Frequencies are in
// MHz.
type AICoreInfo struct {
	Freq    uint32
	CurFreq uint32
}

// AICPUInfo is the wire form of struct dcmi_aicpu_info. Frequencies are in
// MHz, utilization rates in percent per core.
type AICPUInfo struct {
	MaxFreq  uint32
	CurFreq  uint32
	AICPUNum uint32
	UtilRate [AICPUCoreCount]uint32
}

// MemoryInfo is the wire form of struct dcmi_get_memory_info_stru (the v3
// query). Sizes are in MB, the huge page size in KB.
type MemoryInfo struct {
	MemorySize      uint64
	MemoryAvailable uint64
	Freq            uint32
	HugePageSize    uint64
	HugePagesTotal  uint64
	HugePagesFree   uint64
	Utilization     uint32
	Reserved        [60]byte
}

// HBMInfo is the wire form of struct dcmi_hbm_info. Sizes are in MB, the
// frequency in MHz, the temperature in degrees Celsius.
type HBMInfo struct {
	MemorySize        uint64
	Freq              uint32
	MemoryUsage       uint64
	Temp              int32
	BandwidthUtilRate uint32
}

// PCIEErrRate is the wire form of struct dcmi_chip_pcie_err_rate. The three
// *ErrStatus words carry one flag per PCIe lane in their 32 bits.
type PCIEErrRate struct {
	RegDeskewFIFOOverflowIntrStatus uint32
	RegSymbolUnlockIntrStatus       uint32
	RegDeskewUnlockIntrStatus       uint32
	RegPhystatusTimeoutIntrStatus   uint32
	SymbolUnlockCounter             uint32
	PCSRxErrCnt                     uint32
	PhyLaneErrCounter               uint32
	PCSRcvErrStatus                 uint32
	SymbolUnlockErrStatus           uint32
	PhyLaneErrStatus                uint32
	DLLCRCErrNum                    uint32
	DLDCRCErrNum                    uint32
}

// ECCInfo is the wire form of struct dcmi_ecc_info.
type ECCInfo struct {
	EnableFlag                int32
	SingleBitErrorCnt         uint32
	DoubleBitErrorCnt         uint32
	TotalSingleBitErrorCnt    uint32
	TotalDoubleBitErrorCnt    uint32
	SingleBitIsolatedPagesCnt uint32
	DoubleBitIsolatedPagesCnt uint32
}

// VDevResource is the wire form of struct dcmi_create_vdev_res_stru. The
// template name is NUL padded; ids set to VDevAutoID let the library choose.
type VDevResource struct {
	VDevID       uint32
	VFGID        uint32
	TemplateName [TemplateNameLen]byte
	Reserved     [64]byte
}

// VDevOutput is the wire form of struct dcmi_create_vdev_out.
type VDevOutput struct {
	VDevID     uint32
	PCIEBus    uint32
	PCIEDevice uint32
	PCIEFunc   uint32
	VFGID      uint32
	Reserved   [32]byte
}
