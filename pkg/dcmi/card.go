package dcmi

import "github.com/npu-tools/go-dcmi/pkg/dcmi/raw"

// Card is one management unit (a board slot hosting accelerator chips).
// Cards are value snapshots: two enumerations yield value-equal, not
// identity-equal, handles.
type Card struct {
	session *Session

	ID uint32
}

// ChipSet is the result of one chip enumeration: the NPU chips in id order
// plus the optional management controller and control CPU.
type ChipSet struct {
	NPUs []Chip
	MCU  *Chip
	CPU  *Chip
}

// ChipCount reports the number of chips on the card.
func (c Card) ChipCount() (uint32, error) {
	count, status := c.session.raw.GetDeviceNumInCard(int32(c.ID))
	if err := call("dcmi_get_device_num_in_card", status); err != nil {
		return 0, err
	}
	return uint32(count), nil
}

// Chips enumerates the card's chips. The library reports an exclusive upper
// bound for NPU ids, so NPUs get ids [0, bound) tagged NPU, and the MCU and
// CPU appear only when their id is not the absent sentinel. The tags are
// trusted without a type query.
func (c Card) Chips() (ChipSet, error) {
	idMax, mcuID, cpuID, status := c.session.raw.GetDeviceIDInCard(int32(c.ID))
	if err := call("dcmi_get_device_id_in_card", status); err != nil {
		return ChipSet{}, err
	}
	var set ChipSet
	for id := int32(0); id < idMax; id++ {
		set.NPUs = append(set.NPUs, newTypedChip(c.session, c.ID, uint32(id), UnitNPU))
	}
	if mcuID != raw.ChipAbsent {
		mcu := newTypedChip(c.session, c.ID, uint32(mcuID), UnitMCU)
		set.MCU = &mcu
	}
	if cpuID != raw.ChipAbsent {
		cpu := newTypedChip(c.session, c.ID, uint32(cpuID), UnitCPU)
		set.CPU = &cpu
	}
	return set, nil
}

// ChipByID builds a chip handle without checking the id. The handle carries
// no unit-type tag; Type queries the library.
func (c Card) ChipByID(id uint32) Chip {
	return Chip{session: c.session, CardID: c.ID, ID: id}
}
