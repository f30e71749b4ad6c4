package dcmi

import (
	"fmt"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

const (
	// VChipAutoID in a VChipSpec lets the library assign the virtual chip
	// or group id.
	VChipAutoID = raw.VDevAutoID
	// VChipDestroyAll passed to DestroyVChip removes every virtual chip on
	// the chip.
	VChipDestroyAll = raw.VDevDestroyAll
)

// VChipSpec describes the virtual chip to create. TemplateName names a
// vendor-defined compute/memory split; its encoded form must fit the
// 32-byte wire field.
type VChipSpec struct {
	VChipID      uint32 `json:"vchip_id"`
	VFGID        uint32 `json:"vfg_id"`
	TemplateName string `json:"template_name"`
}

// NewVChipSpec builds a spec for the named template with both ids left to
// the library.
func NewVChipSpec(templateName string) VChipSpec {
	return VChipSpec{VChipID: VChipAutoID, VFGID: VChipAutoID, TemplateName: templateName}
}

func (s VChipSpec) encode() (raw.VDevResource, error) {
	if n := len(s.TemplateName); n > raw.TemplateNameLen {
		return raw.VDevResource{}, fmt.Errorf("template name %q is %d bytes, wire field holds %d",
			s.TemplateName, n, raw.TemplateNameLen)
	}
	res := raw.VDevResource{VDevID: s.VChipID, VFGID: s.VFGID}
	copy(res.TemplateName[:], s.TemplateName)
	return res, nil
}

// VChipInfo identifies a created virtual chip.
type VChipInfo struct {
	VChipID uint32 `json:"vchip_id"`
	VFGID   uint32 `json:"vfg_id"`
}

// CreateVChip carves a virtual chip out of the NPU according to spec.
// Oversize template names fail here, before the foreign layer is reached.
func (c Chip) CreateVChip(spec VChipSpec) (VChipInfo, error) {
	res, err := spec.encode()
	if err != nil {
		return VChipInfo{}, fmt.Errorf("dcmi_create_vdevice: %w", err)
	}
	cardID, chipID := c.ids()
	out, status := c.session.raw.CreateVDevice(cardID, chipID, res)
	if err := call("dcmi_create_vdevice", status); err != nil {
		return VChipInfo{}, err
	}
	return VChipInfo{VChipID: out.VDevID, VFGID: out.VFGID}, nil
}

// DestroyVChip removes the virtual chip with the given id, or every virtual
// chip on this chip when id is VChipDestroyAll. The sentinel is forwarded
// unchanged; the dual meaning is one vendor operation.
func (c Chip) DestroyVChip(id uint32) error {
	cardID, chipID := c.ids()
	return call("dcmi_set_destroy_vdevice", c.session.raw.DestroyVDevice(cardID, chipID, id))
}
