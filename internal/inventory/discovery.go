// Package inventory enumerates the accelerator topology at startup and
// flattens it into device records the daemon serves and samples.
package inventory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/npu-tools/go-dcmi/pkg/dcmi"
)

// Device describes a single chip discovered through the management library.
type Device struct {
	ID          string `json:"id"`
	CardID      uint32 `json:"card_id"`
	ChipID      uint32 `json:"chip_id"`
	Unit        string `json:"unit"`
	ChipName    string `json:"chip_name"`
	ChipType    string `json:"chip_type"`
	ChipVersion string `json:"chip_version"`
	AICoreCount uint32 `json:"ai_core_count"`
	PCIAddress  string `json:"pci_address"`
	PCIID       string `json:"pci_id"`
	MarketName  string `json:"market_name"`
}

// IsNPU reports whether the device is a compute chip worth sampling.
func (d Device) IsNPU() bool {
	return d.Unit == dcmi.UnitNPU.String()
}

// Discover walks every card the library reports and describes its chips.
// Identity queries are best effort: a chip that answers enumeration but not
// an info query is still listed, with the unavailable fields left empty.
func Discover(session *dcmi.Session, logger *slog.Logger) ([]Device, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cards, err := session.Cards()
	if err != nil {
		return nil, fmt.Errorf("enumerate cards: %w", err)
	}

	var devices []Device
	for _, card := range cards {
		set, err := card.Chips()
		if err != nil {
			logger.Warn("failed to enumerate card", "card", card.ID, "err", err)
			continue
		}
		for _, chip := range set.NPUs {
			devices = append(devices, describe(chip, logger))
		}
		if set.MCU != nil {
			devices = append(devices, describe(*set.MCU, logger))
		}
		if set.CPU != nil {
			devices = append(devices, describe(*set.CPU, logger))
		}
	}

	return devices, nil
}

func describe(chip dcmi.Chip, logger *slog.Logger) Device {
	dev := Device{
		ID:     fmt.Sprintf("card%d-chip%d", chip.CardID, chip.ID),
		CardID: chip.CardID,
		ChipID: chip.ID,
	}

	unit, err := chip.Type()
	if err != nil {
		logger.Warn("failed to resolve unit type", "device", dev.ID, "err", err)
	}
	dev.Unit = unit.String()

	if info, err := chip.Info(); err == nil {
		dev.ChipName = info.Name
		dev.ChipType = info.Type
		dev.ChipVersion = info.Version
		dev.AICoreCount = info.AICoreCount
	} else {
		logger.Debug("chip info unavailable", "device", dev.ID, "err", err)
	}

	if pcie, err := chip.DomainPCIEInfo(); err == nil {
		applyPCI(&dev, pcie)
	} else if base, err := chip.PCIEInfo(); err == nil {
		// Older drivers lack the domain-aware query; domain 0 covers
		// every single-domain host.
		applyPCI(&dev, dcmi.DomainPCIEInfo{PCIEInfo: base})
	} else {
		logger.Debug("pcie info unavailable", "device", dev.ID, "err", err)
	}

	return dev
}

func applyPCI(dev *Device, pcie dcmi.DomainPCIEInfo) {
	dev.PCIAddress = fmt.Sprintf("%04x:%02x:%02x.%x",
		uint32(pcie.Domain), pcie.BDFBusID, pcie.BDFDeviceID, pcie.BDFFuncID)
	dev.PCIID = formatPCIID(pcie.VendorID) + ":" + formatPCIID(pcie.DeviceID)
	dev.MarketName = lookupMarketName(
		formatPCIID(pcie.VendorID),
		formatPCIID(pcie.DeviceID),
		formatPCIID(pcie.SubvendorID),
		formatPCIID(pcie.SubdeviceID),
	)
}

func formatPCIID(id uint32) string {
	return fmt.Sprintf("%04x", id)
}
