package inventory

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jaypipes/pcidb"

	"github.com/npu-tools/go-dcmi/pkg/dcmi"
	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

func newSession(t *testing.T, ri raw.Interface) *dcmi.Session {
	t.Helper()
	session, err := dcmi.New(dcmi.WithRawInterface(ri))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return session
}

func chipInfoRecord(chipType, name, version string, cores uint32) raw.ChipInfo {
	var rec raw.ChipInfo
	copy(rec.ChipType[:], chipType)
	copy(rec.ChipName[:], name)
	copy(rec.ChipVer[:], version)
	rec.AICoreCnt = cores
	return rec
}

func pcieRecord(bus uint32) raw.PCIEInfoV2 {
	return raw.PCIEInfoV2{
		PCIEInfo: raw.PCIEInfo{
			VenderID:    0x19e5,
			SubvenderID: 0x19e5,
			DeviceID:    0xd801,
			SubdeviceID: 0x3000,
			BDFBusID:    bus,
		},
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{
		{
			ID: 0,
			NPUs: []*raw.SimChip{
				{ID: 0, Unit: raw.UnitNPU, Info: chipInfoRecord("Ascend", "910B", "V1", 25), PCIE: pcieRecord(0x3b)},
				{ID: 1, Unit: raw.UnitNPU, Info: chipInfoRecord("Ascend", "910B", "V1", 25), PCIE: pcieRecord(0x3c)},
			},
			MCU: &raw.SimChip{ID: 4, Unit: raw.UnitMCU},
		},
		{
			ID: 2,
			NPUs: []*raw.SimChip{
				{ID: 0, Unit: raw.UnitNPU, Info: chipInfoRecord("Ascend", "310P", "V1", 8), PCIE: pcieRecord(0x5e)},
			},
		},
	}

	session := newSession(t, sim)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	devices, err := Discover(session, logger)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(devices) != 4 {
		t.Fatalf("expected 4 devices, got %d", len(devices))
	}

	first := devices[0]
	if first.ID != "card0-chip0" {
		t.Fatalf("expected first device id 'card0-chip0', got %q", first.ID)
	}
	if first.Unit != "NPU" {
		t.Errorf("unexpected unit: %q", first.Unit)
	}
	if !first.IsNPU() {
		t.Errorf("expected first device to be an NPU")
	}
	if first.ChipType != "Ascend" || first.ChipName != "910B" || first.ChipVersion != "V1" {
		t.Errorf("unexpected chip identity: %q %q %q", first.ChipType, first.ChipName, first.ChipVersion)
	}
	if first.AICoreCount != 25 {
		t.Errorf("unexpected AI core count: %d", first.AICoreCount)
	}
	if first.PCIAddress != "0000:3b:00.0" {
		t.Errorf("unexpected PCI address: %q", first.PCIAddress)
	}
	if first.PCIID != "19e5:d801" {
		t.Errorf("unexpected PCI ID: %q", first.PCIID)
	}

	if devices[1].ID != "card0-chip1" {
		t.Errorf("unexpected second device id: %q", devices[1].ID)
	}

	mcu := devices[2]
	if mcu.ID != "card0-chip4" {
		t.Fatalf("expected MCU device id 'card0-chip4', got %q", mcu.ID)
	}
	if mcu.Unit != "MCU" {
		t.Errorf("unexpected MCU unit: %q", mcu.Unit)
	}
	if mcu.IsNPU() {
		t.Errorf("MCU must not count as an NPU")
	}

	last := devices[3]
	if last.ID != "card2-chip0" {
		t.Fatalf("expected last device id 'card2-chip0', got %q", last.ID)
	}
	if last.ChipName != "310P" {
		t.Errorf("unexpected chip name for card2: %q", last.ChipName)
	}
	if last.PCIAddress != "0000:5e:00.0" {
		t.Errorf("unexpected PCI address for card2: %q", last.PCIAddress)
	}
}

type brokenCard struct {
	*raw.Simulator
}

func (b brokenCard) GetDeviceIDInCard(cardID int32) (int32, int32, int32, int32) {
	if cardID == 7 {
		return 0, raw.ChipAbsent, raw.ChipAbsent, raw.StatusInnerError
	}
	return b.Simulator.GetDeviceIDInCard(cardID)
}

func TestDiscoverSkipsFailingCard(t *testing.T) {
	t.Parallel()

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{
		{ID: 7, NPUs: []*raw.SimChip{{ID: 0, Unit: raw.UnitNPU}}},
		{ID: 1, NPUs: []*raw.SimChip{{ID: 0, Unit: raw.UnitNPU, Info: chipInfoRecord("Ascend", "910B", "V1", 25)}}},
	}

	session := newSession(t, brokenCard{sim})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	devices, err := Discover(session, logger)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	if devices[0].ID != "card1-chip0" {
		t.Errorf("unexpected device id: %q", devices[0].ID)
	}
}

func TestDiscoverListsChipWithBadIdentity(t *testing.T) {
	t.Parallel()

	// No NUL terminator anywhere in the name: the identity decode fails but
	// the chip still has to show up in the inventory.
	var bad raw.ChipInfo
	for i := range bad.ChipName {
		bad.ChipName[i] = 'x'
	}

	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{
		{ID: 0, NPUs: []*raw.SimChip{{ID: 0, Unit: raw.UnitNPU, Info: bad, PCIE: pcieRecord(0x3b)}}},
	}

	session := newSession(t, sim)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	devices, err := Discover(session, logger)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	if devices[0].ChipName != "" {
		t.Errorf("expected empty chip name, got %q", devices[0].ChipName)
	}
	if devices[0].PCIAddress != "0000:3b:00.0" {
		t.Errorf("expected PCI address despite bad identity, got %q", devices[0].PCIAddress)
	}
}

func TestNormalizePCIID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"0x19E5", "19e5"},
		{"d801", "d801"},
		{"0X5", "0005"},
		{" 1002 ", "1002"},
		{"", ""},
		{"0x", ""},
	}
	for _, tc := range cases {
		if got := normalizePCIID(tc.in); got != tc.want {
			t.Errorf("normalizePCIID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLookupMarketName(t *testing.T) {
	t.Parallel()

	db, err := pcidb.New()
	if err != nil {
		t.Skipf("pcidb unavailable: %v", err)
	}

	const (
		vendorID = "1002"
		deviceID = "73bf"
	)
	product, ok := db.Products[vendorID+deviceID]
	if !ok || product == nil || product.Name == "" {
		t.Skipf("pcidb missing product for %s", vendorID+deviceID)
	}

	if got := lookupMarketName(vendorID, deviceID, "", ""); got != product.Name {
		t.Fatalf("expected name %q, got %q", product.Name, got)
	}
	if got := lookupMarketName("ffff", "0001", "", ""); got != "" {
		t.Fatalf("expected empty name for unknown ids, got %q", got)
	}
}
