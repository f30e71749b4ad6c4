package dcmi

import (
	"fmt"
	"strings"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// UnitType classifies a chip within a card.
type UnitType int32

const (
	UnitNPU UnitType = UnitType(raw.UnitNPU)
	UnitMCU UnitType = UnitType(raw.UnitMCU)
	UnitCPU UnitType = UnitType(raw.UnitCPU)
	// UnitInvalid is a valid vendor answer for chips that support no type
	// query, not an error.
	UnitInvalid UnitType = UnitType(raw.UnitInvalid)
)

func (t UnitType) String() string {
	switch t {
	case UnitNPU:
		return "NPU"
	case UnitMCU:
		return "MCU"
	case UnitCPU:
		return "CPU"
	case UnitInvalid:
		return "Invalid"
	}
	return fmt.Sprintf("UnitType(%d)", int32(t))
}

// unitTypeFromRaw folds everything outside the documented range into
// UnitInvalid.
func unitTypeFromRaw(v int32) UnitType {
	switch v {
	case raw.UnitNPU, raw.UnitMCU, raw.UnitCPU:
		return UnitType(v)
	}
	return UnitInvalid
}

// HealthState is the overall device health reported by the management
// firmware.
type HealthState uint32

const (
	Healthy        HealthState = 0
	GeneralAlarm   HealthState = 1
	ImportantAlarm HealthState = 2
	EmergencyAlarm HealthState = 3
)

func (h HealthState) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case GeneralAlarm:
		return "general alarm"
	case ImportantAlarm:
		return "important alarm"
	case EmergencyAlarm:
		return "emergency alarm"
	}
	return fmt.Sprintf("health state %d", uint32(h))
}

// DieType selects which die a die-id query reads.
type DieType int32

const (
	NDie DieType = DieType(raw.DieNDie)
	VDie DieType = DieType(raw.DieVDie)
)

func (t DieType) String() string {
	switch t {
	case NDie:
		return "NDie"
	case VDie:
		return "VDie"
	}
	return fmt.Sprintf("DieType(%d)", int32(t))
}

// ECCDevice selects the memory subsystem an ECC query reads. The vendor
// manual documents the query for DDR and HBM.
type ECCDevice int32

const (
	ECCDeviceDDR  ECCDevice = ECCDevice(raw.DeviceTypeDDR)
	ECCDeviceSRAM ECCDevice = ECCDevice(raw.DeviceTypeSRAM)
	ECCDeviceHBM  ECCDevice = ECCDevice(raw.DeviceTypeHBM)
	ECCDeviceNPU  ECCDevice = ECCDevice(raw.DeviceTypeNPU)
)

// FrequencyType selects the clock domain a frequency query reads.
type FrequencyType int32

const (
	FrequencyDDR           FrequencyType = FrequencyType(raw.FreqDDR)
	FrequencyCtrlCPU       FrequencyType = FrequencyType(raw.FreqCtrlCPU)
	FrequencyHBM           FrequencyType = FrequencyType(raw.FreqHBM)
	FrequencyAICoreCurrent FrequencyType = FrequencyType(raw.FreqAICoreCurrent)
	FrequencyAICoreRated   FrequencyType = FrequencyType(raw.FreqAICoreRated)
)

// UtilizationType selects the subsystem a utilization query reads.
type UtilizationType int32

const (
	UtilizationMemory          UtilizationType = UtilizationType(raw.UtilMemory)
	UtilizationAICore          UtilizationType = UtilizationType(raw.UtilAICore)
	UtilizationAICPU           UtilizationType = UtilizationType(raw.UtilAICPU)
	UtilizationCtrlCPU         UtilizationType = UtilizationType(raw.UtilCtrlCPU)
	UtilizationMemoryBandwidth UtilizationType = UtilizationType(raw.UtilMemoryBandwidth)
	UtilizationHBM             UtilizationType = UtilizationType(raw.UtilHBM)
	UtilizationHBMBandwidth    UtilizationType = UtilizationType(raw.UtilHBMBandwidth)
)

// ChipInfo describes a chip's silicon: type, name, version and AI core
// count.
type ChipInfo struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	AICoreCount uint32 `json:"ai_core_count"`
}

func decodeChipInfo(rec raw.ChipInfo) (ChipInfo, error) {
	typ, err := decodeText(rec.ChipType[:])
	if err != nil {
		return ChipInfo{}, fmt.Errorf("chip type: %w", err)
	}
	name, err := decodeText(rec.ChipName[:])
	if err != nil {
		return ChipInfo{}, fmt.Errorf("chip name: %w", err)
	}
	ver, err := decodeText(rec.ChipVer[:])
	if err != nil {
		return ChipInfo{}, fmt.Errorf("chip version: %w", err)
	}
	return ChipInfo{Type: typ, Name: name, Version: ver, AICoreCount: rec.AICoreCnt}, nil
}

// PCIEInfo is a chip's PCI identity and bus position.
type PCIEInfo struct {
	VendorID    uint32 `json:"vendor_id"`
	SubvendorID uint32 `json:"subvendor_id"`
	DeviceID    uint32 `json:"device_id"`
	SubdeviceID uint32 `json:"subdevice_id"`
	BDFDeviceID uint32 `json:"bdf_device_id"`
	BDFBusID    uint32 `json:"bdf_bus_id"`
	BDFFuncID   uint32 `json:"bdf_func_id"`
}

func decodePCIEInfo(rec raw.PCIEInfo) PCIEInfo {
	return PCIEInfo{
		VendorID:    rec.VenderID,
		SubvendorID: rec.SubvenderID,
		DeviceID:    rec.DeviceID,
		SubdeviceID: rec.SubdeviceID,
		BDFDeviceID: rec.BDFDeviceID,
		BDFBusID:    rec.BDFBusID,
		BDFFuncID:   rec.BDFFuncID,
	}
}

// DomainPCIEInfo extends PCIEInfo with the PCI domain.
type DomainPCIEInfo struct {
	PCIEInfo
	Domain int32 `json:"domain"`
}

func decodeDomainPCIEInfo(rec raw.PCIEInfoV2) DomainPCIEInfo {
	return DomainPCIEInfo{PCIEInfo: decodePCIEInfo(rec.PCIEInfo), Domain: rec.Domain}
}

// BoardInfo identifies the physical board a chip sits on.
type BoardInfo struct {
	BoardID uint32 `json:"board_id"`
	PCBID   uint32 `json:"pcb_id"`
	BOMID   uint32 `json:"bom_id"`
	SlotID  uint32 `json:"slot_id"`
}

func decodeBoardInfo(rec raw.BoardInfo) BoardInfo {
	return BoardInfo{BoardID: rec.BoardID, PCBID: rec.PCBID, BOMID: rec.BOMID, SlotID: rec.SlotID}
}

// ELabelInfo is the electronic label (asset data) of a device.
type ELabelInfo struct {
	ProductName  string `json:"product_name"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serial_number"`
}

func decodeELabelInfo(rec raw.ELabelInfo) (ELabelInfo, error) {
	product, err := decodeText(rec.ProductName[:])
	if err != nil {
		return ELabelInfo{}, fmt.Errorf("product name: %w", err)
	}
	model, err := decodeText(rec.Model[:])
	if err != nil {
		return ELabelInfo{}, fmt.Errorf("model: %w", err)
	}
	manufacturer, err := decodeText(rec.Manufacturer[:])
	if err != nil {
		return ELabelInfo{}, fmt.Errorf("manufacturer: %w", err)
	}
	serial, err := decodeText(rec.SerialNumber[:])
	if err != nil {
		return ELabelInfo{}, fmt.Errorf("serial number: %w", err)
	}
	return ELabelInfo{
		ProductName:  product,
		Model:        model,
		Manufacturer: manufacturer,
		SerialNumber: serial,
	}, nil
}

// DieInfo carries the five die-id words of a chip.
type DieInfo struct {
	SocDie [raw.DieIDCount]uint32 `json:"soc_die"`
}

func (d DieInfo) String() string {
	words := make([]string, len(d.SocDie))
	for i, w := range d.SocDie {
		words[i] = fmt.Sprintf("%08x", w)
	}
	return strings.Join(words, "-")
}

func decodeDieInfo(rec raw.DieID) DieInfo {
	return DieInfo{SocDie: rec.SocDie}
}

// flashStateHealthy is the only flash state register value meaning healthy.
const flashStateHealthy uint16 = 0x8

// FlashInfo describes one on-board flash device.
type FlashInfo struct {
	FlashID        uint64 `json:"flash_id"`
	DeviceID       uint16 `json:"device_id"`
	Vendor         uint16 `json:"vendor"`
	IsHealthy      bool   `json:"is_healthy"`
	Size           uint64 `json:"size"`
	SectorCount    uint32 `json:"sector_count"`
	ManufacturerID uint16 `json:"manufacturer_id"`
}

func decodeFlashInfo(rec raw.FlashInfo) FlashInfo {
	return FlashInfo{
		FlashID:        rec.FlashID,
		DeviceID:       rec.DeviceID,
		Vendor:         rec.Vendor,
		IsHealthy:      rec.State == flashStateHealthy,
		Size:           rec.Size,
		SectorCount:    rec.SectorCount,
		ManufacturerID: rec.ManufacturerID,
	}
}

// AICoreInfo reports AI core clocks in MHz.
type AICoreInfo struct {
	Frequency        uint32 `json:"frequency"`
	CurrentFrequency uint32 `json:"current_frequency"`
}

func decodeAICoreInfo(rec raw.AICoreInfo) AICoreInfo {
	return AICoreInfo{Frequency: rec.Freq, CurrentFrequency: rec.CurFreq}
}

// AICPUInfo reports AI CPU clocks (MHz) and the per-core utilization table.
// All 16 slots are kept; only the first AICPUCount are populated by the
// firmware.
type AICPUInfo struct {
	MaxFrequency     uint32                     `json:"max_frequency"`
	CurrentFrequency uint32                     `json:"current_frequency"`
	AICPUCount       uint32                     `json:"aicpu_count"`
	UtilizationRates [raw.AICPUCoreCount]uint32 `json:"utilization_rates"`
}

func decodeAICPUInfo(rec raw.AICPUInfo) AICPUInfo {
	return AICPUInfo{
		MaxFrequency:     rec.MaxFreq,
		CurrentFrequency: rec.CurFreq,
		AICPUCount:       rec.AICPUNum,
		UtilizationRates: rec.UtilRate,
	}
}

// MemoryInfo reports DDR capacity and usage. Sizes are in MB, the huge page
// size in KB.
type MemoryInfo struct {
	MemorySize      uint64 `json:"memory_size"`
	MemoryAvailable uint64 `json:"memory_available"`
	Frequency       uint32 `json:"frequency"`
	HugePageSize    uint64 `json:"huge_page_size"`
	HugePagesTotal  uint64 `json:"huge_pages_total"`
	HugePagesFree   uint64 `json:"huge_pages_free"`
	Utilization     uint32 `json:"utilization"`
}

func decodeMemoryInfo(rec raw.MemoryInfo) MemoryInfo {
	return MemoryInfo{
		MemorySize:      rec.MemorySize,
		MemoryAvailable: rec.MemoryAvailable,
		Frequency:       rec.Freq,
		HugePageSize:    rec.HugePageSize,
		HugePagesTotal:  rec.HugePagesTotal,
		HugePagesFree:   rec.HugePagesFree,
		Utilization:     rec.Utilization,
	}
}

// HBMInfo reports high-bandwidth memory capacity, usage and temperature.
// Sizes are in MB.
type HBMInfo struct {
	MemorySize        uint64 `json:"memory_size"`
	Frequency         uint32 `json:"frequency"`
	MemoryUsage       uint64 `json:"memory_usage"`
	Temperature       int32  `json:"temperature"`
	BandwidthUtilRate uint32 `json:"bandwidth_util_rate"`
}

func decodeHBMInfo(rec raw.HBMInfo) HBMInfo {
	return HBMInfo{
		MemorySize:        rec.MemorySize,
		Frequency:         rec.Freq,
		MemoryUsage:       rec.MemoryUsage,
		Temperature:       rec.Temp,
		BandwidthUtilRate: rec.BandwidthUtilRate,
	}
}

// PCIEErrorStats is the per-link PCIe error census of a chip. The three
// *ErrStatus vectors carry one flag per lane, lane 0 first.
type PCIEErrorStats struct {
	DeskewFIFOOverflowIntr bool     `json:"deskew_fifo_overflow_intr"`
	SymbolUnlockIntr       bool     `json:"symbol_unlock_intr"`
	DeskewUnlockIntr       bool     `json:"deskew_unlock_intr"`
	PhystatusTimeoutIntr   bool     `json:"phystatus_timeout_intr"`
	SymbolUnlockCounter    uint32   `json:"symbol_unlock_counter"`
	PCSRxErrCount          uint32   `json:"pcs_rx_err_count"`
	PhyLaneErrCounter      uint32   `json:"phy_lane_err_counter"`
	PCSRcvErrStatus        [32]bool `json:"pcs_rcv_err_status"`
	SymbolUnlockErrStatus  [32]bool `json:"symbol_unlock_err_status"`
	PhyLaneErrStatus       [32]bool `json:"phy_lane_err_status"`
	DLLCRCErrCount         uint32   `json:"dll_crc_err_count"`
	DLDCRCErrCount         uint32   `json:"dld_crc_err_count"`
}

func decodePCIEErrorStats(rec raw.PCIEErrRate) PCIEErrorStats {
	return PCIEErrorStats{
		DeskewFIFOOverflowIntr: rec.RegDeskewFIFOOverflowIntrStatus != 0,
		SymbolUnlockIntr:       rec.RegSymbolUnlockIntrStatus != 0,
		DeskewUnlockIntr:       rec.RegDeskewUnlockIntrStatus != 0,
		PhystatusTimeoutIntr:   rec.RegPhystatusTimeoutIntrStatus != 0,
		SymbolUnlockCounter:    rec.SymbolUnlockCounter,
		PCSRxErrCount:          rec.PCSRxErrCnt,
		PhyLaneErrCounter:      rec.PhyLaneErrCounter,
		PCSRcvErrStatus:        decodeLaneMask(rec.PCSRcvErrStatus),
		SymbolUnlockErrStatus:  decodeLaneMask(rec.SymbolUnlockErrStatus),
		PhyLaneErrStatus:       decodeLaneMask(rec.PhyLaneErrStatus),
		DLLCRCErrCount:         rec.DLLCRCErrNum,
		DLDCRCErrCount:         rec.DLDCRCErrNum,
	}
}

// ECCInfo reports the ECC state of one memory subsystem.
type ECCInfo struct {
	Enabled                     bool   `json:"enabled"`
	SingleBitErrorCount         uint32 `json:"single_bit_error_count"`
	DoubleBitErrorCount         uint32 `json:"double_bit_error_count"`
	TotalSingleBitErrorCount    uint32 `json:"total_single_bit_error_count"`
	TotalDoubleBitErrorCount    uint32 `json:"total_double_bit_error_count"`
	SingleBitIsolatedPagesCount uint32 `json:"single_bit_isolated_pages_count"`
	DoubleBitIsolatedPagesCount uint32 `json:"double_bit_isolated_pages_count"`
}

func decodeECCInfo(rec raw.ECCInfo) ECCInfo {
	return ECCInfo{
		Enabled:                     rec.EnableFlag != 0,
		SingleBitErrorCount:         rec.SingleBitErrorCnt,
		DoubleBitErrorCount:         rec.DoubleBitErrorCnt,
		TotalSingleBitErrorCount:    rec.TotalSingleBitErrorCnt,
		TotalDoubleBitErrorCount:    rec.TotalDoubleBitErrorCnt,
		SingleBitIsolatedPagesCount: rec.SingleBitIsolatedPagesCnt,
		DoubleBitIsolatedPagesCount: rec.DoubleBitIsolatedPagesCnt,
	}
}
