package raw

import "sync"

// Simulator is an in-memory Interface for development and tests on hosts
// without the vendor library. Populate the topology, hand it to the typed
// layer, and every query answers from the stored records; ids that do not
// exist answer with StatusInvalidDeviceID like real hardware.
type Simulator struct {
	mu sync.Mutex

	DCMIVersion   string
	DriverVersion string
	Cards         []*SimCard

	nextVChipID uint32
}

// SimCard is one simulated management unit. NPUs occupy chip ids
// [0, len(NPUs)); MCU and CPU are optional.
type SimCard struct {
	ID   int32
	NPUs []*SimChip
	MCU  *SimChip
	CPU  *SimChip
}

// SimChip holds the raw records one chip answers with. Zero values are
// served as-is, so tests set only what they assert on.
type SimChip struct {
	ID   int32
	Unit int32

	Info         ChipInfo
	PCIE         PCIEInfoV2
	Board        BoardInfo
	ELabel       ELabelInfo
	Die          DieID
	Power        int32
	Health       uint32
	ErrorCodes   []uint32
	ErrorText    string
	Flash        []FlashInfo
	AICore       AICoreInfo
	AICPU        AICPUInfo
	SystemTime   uint32
	Temperature  int32
	Voltage      uint32
	PCIEErrors   PCIEErrRate
	ECC          ECCInfo
	Memory       MemoryInfo
	HBM          HBMInfo
	Frequencies  map[int32]uint32
	Utilizations map[int32]uint32

	vchips map[uint32]struct{}
}

var _ Interface = (*Simulator)(nil)

// NewSimulator returns a simulator with version strings set and no cards.
func NewSimulator() *Simulator {
	return &Simulator{DCMIVersion: "sim", DriverVersion: "sim"}
}

func (s *Simulator) card(cardID int32) *SimCard {
	for _, card := range s.Cards {
		if card.ID == cardID {
			return card
		}
	}
	return nil
}

func (s *Simulator) chip(cardID, chipID int32) *SimChip {
	card := s.card(cardID)
	if card == nil {
		return nil
	}
	for _, chip := range card.NPUs {
		if chip.ID == chipID {
			return chip
		}
	}
	if card.MCU != nil && card.MCU.ID == chipID {
		return card.MCU
	}
	if card.CPU != nil && card.CPU.ID == chipID {
		return card.CPU
	}
	return nil
}

func (s *Simulator) Init() int32 { return StatusOK }

func (s *Simulator) GetDCMIVersion() ([DCMIVersionLen]byte, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf [DCMIVersionLen]byte
	copy(buf[:], s.DCMIVersion)
	return buf, StatusOK
}

func (s *Simulator) GetDriverVersion() ([DriverVersionLen]byte, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf [DriverVersionLen]byte
	copy(buf[:], s.DriverVersion)
	return buf, StatusOK
}

func (s *Simulator) GetVersion(cardID, chipID int32) ([DriverVersionLen]byte, int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chip(cardID, chipID) == nil {
		return [DriverVersionLen]byte{}, 0, StatusInvalidDeviceID
	}
	var buf [DriverVersionLen]byte
	copy(buf[:], s.DriverVersion)
	return buf, int32(len(s.DriverVersion)), StatusOK
}

func (s *Simulator) GetCardList() (int32, [CardListLen]int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids [CardListLen]int32
	n := min(len(s.Cards), CardListLen)
	for i := 0; i < n; i++ {
		ids[i] = s.Cards[i].ID
	}
	return int32(n), ids, StatusOK
}

func (s *Simulator) GetDeviceNumInCard(cardID int32) (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := s.card(cardID)
	if card == nil {
		return 0, StatusInvalidDeviceID
	}
	count := int32(len(card.NPUs))
	if card.MCU != nil {
		count++
	}
	if card.CPU != nil {
		count++
	}
	return count, StatusOK
}

func (s *Simulator) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := s.card(cardID)
	if card == nil {
		return 0, ChipAbsent, ChipAbsent, StatusInvalidDeviceID
	}
	mcuID, cpuID := ChipAbsent, ChipAbsent
	if card.MCU != nil {
		mcuID = card.MCU.ID
	}
	if card.CPU != nil {
		cpuID = card.CPU.ID
	}
	return int32(len(card.NPUs)), mcuID, cpuID, StatusOK
}

func (s *Simulator) GetDeviceType(cardID, chipID int32) (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return UnitInvalid, StatusInvalidDeviceID
	}
	return chip.Unit, StatusOK
}

func (s *Simulator) GetDeviceChipInfo(cardID, chipID int32) (ChipInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return ChipInfo{}, StatusInvalidDeviceID
	}
	return chip.Info, StatusOK
}

func (s *Simulator) GetDevicePCIEInfo(cardID, chipID int32) (PCIEInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return PCIEInfo{}, StatusInvalidDeviceID
	}
	return chip.PCIE.PCIEInfo, StatusOK
}

func (s *Simulator) GetDevicePCIEInfoV2(cardID, chipID int32) (PCIEInfoV2, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return PCIEInfoV2{}, StatusInvalidDeviceID
	}
	return chip.PCIE, StatusOK
}

func (s *Simulator) GetDeviceBoardInfo(cardID, chipID int32) (BoardInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return BoardInfo{}, StatusInvalidDeviceID
	}
	return chip.Board, StatusOK
}

func (s *Simulator) GetDeviceELabelInfo(cardID, chipID int32) (ELabelInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return ELabelInfo{}, StatusInvalidDeviceID
	}
	return chip.ELabel, StatusOK
}

func (s *Simulator) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return chip.Power, StatusOK
}

func (s *Simulator) GetDeviceDie(cardID, chipID, dieType int32) (DieID, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return DieID{}, StatusInvalidDeviceID
	}
	return chip.Die, StatusOK
}

func (s *Simulator) GetDeviceHealth(cardID, chipID int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return chip.Health, StatusOK
}

func (s *Simulator) GetDeviceErrorCodes(cardID, chipID int32) (int32, [ErrorCodeListLen]uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, [ErrorCodeListLen]uint32{}, StatusInvalidDeviceID
	}
	var codes [ErrorCodeListLen]uint32
	n := min(len(chip.ErrorCodes), ErrorCodeListLen)
	copy(codes[:], chip.ErrorCodes[:n])
	return int32(n), codes, StatusOK
}

func (s *Simulator) GetDeviceErrorString(cardID, chipID int32, code, bufLen uint32) ([ErrorStringLen]byte, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return [ErrorStringLen]byte{}, StatusInvalidDeviceID
	}
	var buf [ErrorStringLen]byte
	limit := min(int(bufLen)-1, len(chip.ErrorText))
	if limit > 0 {
		copy(buf[:], chip.ErrorText[:limit])
	}
	return buf, StatusOK
}

func (s *Simulator) GetDeviceFlashCount(cardID, chipID int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return uint32(len(chip.Flash)), StatusOK
}

func (s *Simulator) GetDeviceFlashInfo(cardID, chipID int32, flashID uint32) (FlashInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return FlashInfo{}, StatusInvalidDeviceID
	}
	if int(flashID) >= len(chip.Flash) {
		return FlashInfo{}, StatusInvalidParameter
	}
	return chip.Flash[flashID], StatusOK
}

func (s *Simulator) GetDeviceAICoreInfo(cardID, chipID int32) (AICoreInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return AICoreInfo{}, StatusInvalidDeviceID
	}
	return chip.AICore, StatusOK
}

func (s *Simulator) GetDeviceAICPUInfo(cardID, chipID int32) (AICPUInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return AICPUInfo{}, StatusInvalidDeviceID
	}
	return chip.AICPU, StatusOK
}

func (s *Simulator) GetDeviceSystemTime(cardID, chipID int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return chip.SystemTime, StatusOK
}

func (s *Simulator) GetDeviceTemperature(cardID, chipID int32) (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return chip.Temperature, StatusOK
}

func (s *Simulator) GetDeviceVoltage(cardID, chipID int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	return chip.Voltage, StatusOK
}

func (s *Simulator) GetDevicePCIEErrorCount(cardID, chipID int32) (PCIEErrRate, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return PCIEErrRate{}, StatusInvalidDeviceID
	}
	return chip.PCIEErrors, StatusOK
}

func (s *Simulator) GetDeviceECCInfo(cardID, chipID, deviceType int32) (ECCInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return ECCInfo{}, StatusInvalidDeviceID
	}
	return chip.ECC, StatusOK
}

func (s *Simulator) GetDeviceFrequency(cardID, chipID, freqType int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	mhz, ok := chip.Frequencies[freqType]
	if !ok {
		return 0, StatusNotSupported
	}
	return mhz, StatusOK
}

func (s *Simulator) GetDeviceHBMInfo(cardID, chipID int32) (HBMInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return HBMInfo{}, StatusInvalidDeviceID
	}
	return chip.HBM, StatusOK
}

func (s *Simulator) GetDeviceMemoryInfo(cardID, chipID int32) (MemoryInfo, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return MemoryInfo{}, StatusInvalidDeviceID
	}
	return chip.Memory, StatusOK
}

func (s *Simulator) GetDeviceUtilizationRate(cardID, chipID, utilType int32) (uint32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return 0, StatusInvalidDeviceID
	}
	rate, ok := chip.Utilizations[utilType]
	if !ok {
		return 0, StatusNotSupported
	}
	return rate, StatusOK
}

func (s *Simulator) CreateVDevice(cardID, chipID int32, res VDevResource) (VDevOutput, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return VDevOutput{}, StatusInvalidDeviceID
	}
	id := res.VDevID
	if id == VDevAutoID {
		// Real firmware hands out virtual ids from 100 up.
		id = 100 + s.nextVChipID
		s.nextVChipID++
	}
	vfg := res.VFGID
	if vfg == VDevAutoID {
		vfg = 0
	}
	if chip.vchips == nil {
		chip.vchips = make(map[uint32]struct{})
	}
	if _, exists := chip.vchips[id]; exists {
		return VDevOutput{}, StatusResourceOccupied
	}
	chip.vchips[id] = struct{}{}
	return VDevOutput{VDevID: id, VFGID: vfg}, StatusOK
}

func (s *Simulator) DestroyVDevice(cardID, chipID int32, vdevID uint32) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip := s.chip(cardID, chipID)
	if chip == nil {
		return StatusInvalidDeviceID
	}
	if vdevID == VDevDestroyAll {
		chip.vchips = nil
		return StatusOK
	}
	if _, ok := chip.vchips[vdevID]; !ok {
		return StatusDeviceNotExist
	}
	delete(chip.vchips, vdevID)
	return StatusOK
}
