package dcmi

import (
	"fmt"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// Chip is one sub-device of a card, addressed by (CardID, ID). Chips built
// by Chips carry the unit type derived from enumeration; chips built by
// ChipByID resolve it through Type.
type Chip struct {
	session *Session

	CardID uint32
	ID     uint32

	unit  UnitType
	typed bool
}

func newTypedChip(s *Session, cardID, id uint32, unit UnitType) Chip {
	return Chip{session: s, CardID: cardID, ID: id, unit: unit, typed: true}
}

func (c Chip) ids() (int32, int32) {
	return int32(c.CardID), int32(c.ID)
}

// Type reports what kind of unit the chip is. The enumeration tag is used
// when present; otherwise the library is asked. On real hardware only NPU
// and MCU chips answer the query; UnitInvalid is a valid vendor answer, not
// an error.
func (c Chip) Type() (UnitType, error) {
	if c.typed {
		return c.unit, nil
	}
	cardID, chipID := c.ids()
	v, status := c.session.raw.GetDeviceType(cardID, chipID)
	if err := call("dcmi_get_device_type", status); err != nil {
		return UnitInvalid, err
	}
	return unitTypeFromRaw(v), nil
}

// Info reports the chip silicon type, name, version and AI core count.
func (c Chip) Info() (ChipInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceChipInfo(cardID, chipID)
	if err := call("dcmi_get_device_chip_info", status); err != nil {
		return ChipInfo{}, err
	}
	info, err := decodeChipInfo(rec)
	if err != nil {
		return ChipInfo{}, fmt.Errorf("dcmi_get_device_chip_info: %w", err)
	}
	return info, nil
}

// PCIEInfo reports the chip's PCI identity without the domain.
func (c Chip) PCIEInfo() (PCIEInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDevicePCIEInfo(cardID, chipID)
	if err := call("dcmi_get_device_pcie_info", status); err != nil {
		return PCIEInfo{}, err
	}
	return decodePCIEInfo(rec), nil
}

// DomainPCIEInfo reports the chip's PCI identity including the domain.
func (c Chip) DomainPCIEInfo() (DomainPCIEInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDevicePCIEInfoV2(cardID, chipID)
	if err := call("dcmi_get_device_pcie_info_v2", status); err != nil {
		return DomainPCIEInfo{}, err
	}
	return decodeDomainPCIEInfo(rec), nil
}

// BoardInfo reports board, PCB, BOM and slot ids.
func (c Chip) BoardInfo() (BoardInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceBoardInfo(cardID, chipID)
	if err := call("dcmi_get_device_board_info", status); err != nil {
		return BoardInfo{}, err
	}
	return decodeBoardInfo(rec), nil
}

// ELabelInfo reports the electronic asset label.
func (c Chip) ELabelInfo() (ELabelInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceELabelInfo(cardID, chipID)
	if err := call("dcmi_get_device_elabel_info", status); err != nil {
		return ELabelInfo{}, err
	}
	label, err := decodeELabelInfo(rec)
	if err != nil {
		return ELabelInfo{}, fmt.Errorf("dcmi_get_device_elabel_info: %w", err)
	}
	return label, nil
}

// Power reports current draw in 0.1 W units.
func (c Chip) Power() (uint32, error) {
	cardID, chipID := c.ids()
	power, status := c.session.raw.GetDevicePowerInfo(cardID, chipID)
	if err := call("dcmi_get_device_power_info", status); err != nil {
		return 0, err
	}
	return uint32(power), nil
}

// DieInfo reports the die-id words of the selected die.
func (c Chip) DieInfo(die DieType) (DieInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceDie(cardID, chipID, int32(die))
	if err := call("dcmi_get_device_die_v2", status); err != nil {
		return DieInfo{}, err
	}
	return decodeDieInfo(rec), nil
}

// Health reports the device health state. The library overloads the answer
// with a "device not found or not started" sentinel, which becomes
// ErrDeviceNotExist here so callers can tell a vanished device from an
// emergency alarm.
func (c Chip) Health() (HealthState, error) {
	cardID, chipID := c.ids()
	health, status := c.session.raw.GetDeviceHealth(cardID, chipID)
	if err := call("dcmi_get_device_health", status); err != nil {
		return 0, err
	}
	if health == raw.HealthDeviceNotFound {
		return 0, fmt.Errorf("dcmi_get_device_health: %w", ErrDeviceNotExist)
	}
	return HealthState(health), nil
}

// ErrorCodes reports the active fault codes, at most the 128 the wire format
// carries.
func (c Chip) ErrorCodes() ([]uint32, error) {
	cardID, chipID := c.ids()
	count, codes, status := c.session.raw.GetDeviceErrorCodes(cardID, chipID)
	if err := call("dcmi_get_device_errorcode_v2", status); err != nil {
		return nil, err
	}
	n := max(0, min(int(count), len(codes)))
	out := make([]uint32, n)
	copy(out, codes[:n])
	return out, nil
}

// ErrorDescription resolves a fault code to its description. With simplified
// set, the library is asked for the short 48-byte form instead of the full
// 256-byte one.
func (c Chip) ErrorDescription(code uint32, simplified bool) (string, error) {
	bufLen := uint32(raw.ErrorStringLen)
	if simplified {
		bufLen = raw.ErrorStringShortLen
	}
	cardID, chipID := c.ids()
	desc, status := c.session.raw.GetDeviceErrorString(cardID, chipID, code, bufLen)
	if err := call("dcmi_get_device_errorcode_string", status); err != nil {
		return "", err
	}
	s, err := decodeText(desc[:bufLen])
	if err != nil {
		return "", fmt.Errorf("dcmi_get_device_errorcode_string: %w", err)
	}
	return s, nil
}

// FlashCount reports how many flash devices the chip carries.
func (c Chip) FlashCount() (uint32, error) {
	cardID, chipID := c.ids()
	count, status := c.session.raw.GetDeviceFlashCount(cardID, chipID)
	if err := call("dcmi_get_device_flash_count", status); err != nil {
		return 0, err
	}
	return count, nil
}

// FlashInfo reports one flash device by index.
func (c Chip) FlashInfo(flashID uint32) (FlashInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceFlashInfo(cardID, chipID, flashID)
	if err := call("dcmi_get_device_flash_info_v2", status); err != nil {
		return FlashInfo{}, err
	}
	return decodeFlashInfo(rec), nil
}

// AICoreInfo reports AI core clocks.
func (c Chip) AICoreInfo() (AICoreInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceAICoreInfo(cardID, chipID)
	if err := call("dcmi_get_device_aicore_info", status); err != nil {
		return AICoreInfo{}, err
	}
	return decodeAICoreInfo(rec), nil
}

// AICPUInfo reports AI CPU clocks and per-core utilization.
func (c Chip) AICPUInfo() (AICPUInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceAICPUInfo(cardID, chipID)
	if err := call("dcmi_get_device_aicpu_info", status); err != nil {
		return AICPUInfo{}, err
	}
	return decodeAICPUInfo(rec), nil
}

// SystemTime reports the device clock in seconds since the Unix epoch.
func (c Chip) SystemTime() (uint32, error) {
	cardID, chipID := c.ids()
	seconds, status := c.session.raw.GetDeviceSystemTime(cardID, chipID)
	if err := call("dcmi_get_device_system_time", status); err != nil {
		return 0, err
	}
	return seconds, nil
}

// Temperature reports the chip temperature in degrees Celsius. The two
// sensor sentinels surface as ErrInvalidData and ErrReadFailure.
func (c Chip) Temperature() (int32, error) {
	cardID, chipID := c.ids()
	temp, status := c.session.raw.GetDeviceTemperature(cardID, chipID)
	if err := call("dcmi_get_device_temperature", status); err != nil {
		return 0, err
	}
	if err := checkSensor(int64(temp)); err != nil {
		return 0, fmt.Errorf("dcmi_get_device_temperature: %w", err)
	}
	return temp, nil
}

// Voltage reports the supply voltage in 0.01 V units. The two sensor
// sentinels surface as ErrInvalidData and ErrReadFailure.
func (c Chip) Voltage() (uint32, error) {
	cardID, chipID := c.ids()
	voltage, status := c.session.raw.GetDeviceVoltage(cardID, chipID)
	if err := call("dcmi_get_device_voltage", status); err != nil {
		return 0, err
	}
	if err := checkSensor(int64(voltage)); err != nil {
		return 0, fmt.Errorf("dcmi_get_device_voltage: %w", err)
	}
	return voltage, nil
}

// PCIEErrorStats reports the PCIe link error census.
func (c Chip) PCIEErrorStats() (PCIEErrorStats, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDevicePCIEErrorCount(cardID, chipID)
	if err := call("dcmi_get_device_pcie_error_cnt", status); err != nil {
		return PCIEErrorStats{}, err
	}
	return decodePCIEErrorStats(rec), nil
}

// ECCInfo reports the ECC state of the selected memory subsystem.
func (c Chip) ECCInfo(device ECCDevice) (ECCInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceECCInfo(cardID, chipID, int32(device))
	if err := call("dcmi_get_device_ecc_info", status); err != nil {
		return ECCInfo{}, err
	}
	return decodeECCInfo(rec), nil
}

// Frequency reports the clock of the selected domain in MHz.
func (c Chip) Frequency(freq FrequencyType) (uint32, error) {
	cardID, chipID := c.ids()
	mhz, status := c.session.raw.GetDeviceFrequency(cardID, chipID, int32(freq))
	if err := call("dcmi_get_device_frequency", status); err != nil {
		return 0, err
	}
	return mhz, nil
}

// HBMInfo reports high-bandwidth memory capacity, usage and temperature.
func (c Chip) HBMInfo() (HBMInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceHBMInfo(cardID, chipID)
	if err := call("dcmi_get_device_hbm_info", status); err != nil {
		return HBMInfo{}, err
	}
	return decodeHBMInfo(rec), nil
}

// MemoryInfo reports DDR capacity and usage.
func (c Chip) MemoryInfo() (MemoryInfo, error) {
	cardID, chipID := c.ids()
	rec, status := c.session.raw.GetDeviceMemoryInfo(cardID, chipID)
	if err := call("dcmi_get_device_memory_info_v3", status); err != nil {
		return MemoryInfo{}, err
	}
	return decodeMemoryInfo(rec), nil
}

// Utilization reports the load of the selected subsystem in percent.
func (c Chip) Utilization(util UtilizationType) (uint32, error) {
	cardID, chipID := c.ids()
	rate, status := c.session.raw.GetDeviceUtilizationRate(cardID, chipID, int32(util))
	if err := call("dcmi_get_device_utilization_rate", status); err != nil {
		return 0, err
	}
	return rate, nil
}
