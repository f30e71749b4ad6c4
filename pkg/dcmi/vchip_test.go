package dcmi

import (
	"strings"
	"testing"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

func TestNewVChipSpecDefaults(t *testing.T) {
	t.Parallel()

	spec := NewVChipSpec("vir02")
	if spec.VChipID != VChipAutoID {
		t.Errorf("VChipID = %#x, want auto id", spec.VChipID)
	}
	if spec.VFGID != VChipAutoID {
		t.Errorf("VFGID = %#x, want auto id", spec.VFGID)
	}
	if spec.TemplateName != "vir02" {
		t.Errorf("TemplateName = %q", spec.TemplateName)
	}
}

func TestCreateVChip(t *testing.T) {
	t.Parallel()

	var gotRes raw.VDevResource
	f := &fakeRaw{
		createVDevice: func(cardID, chipID int32, res raw.VDevResource) (raw.VDevOutput, int32) {
			gotRes = res
			return raw.VDevOutput{VDevID: 104, VFGID: 2}, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	out, err := s.CardByID(0).ChipByID(0).CreateVChip(NewVChipSpec("vir04"))
	if err != nil {
		t.Fatalf("CreateVChip returned error: %v", err)
	}
	if out.VChipID != 104 || out.VFGID != 2 {
		t.Fatalf("CreateVChip = %+v", out)
	}

	if gotRes.VDevID != raw.VDevAutoID || gotRes.VFGID != raw.VDevAutoID {
		t.Errorf("ids on the wire = %#x/%#x, want auto", gotRes.VDevID, gotRes.VFGID)
	}
	want := [raw.TemplateNameLen]byte{}
	copy(want[:], "vir04")
	if gotRes.TemplateName != want {
		t.Errorf("template on the wire = %q", gotRes.TemplateName[:])
	}
}

func TestCreateVChipTemplateAtCapacity(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("t", raw.TemplateNameLen)
	var gotRes raw.VDevResource
	f := &fakeRaw{
		createVDevice: func(cardID, chipID int32, res raw.VDevResource) (raw.VDevOutput, int32) {
			gotRes = res
			return raw.VDevOutput{}, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	if _, err := s.CardByID(0).ChipByID(0).CreateVChip(NewVChipSpec(name)); err != nil {
		t.Fatalf("CreateVChip with 32-byte template returned error: %v", err)
	}
	if string(gotRes.TemplateName[:]) != name {
		t.Errorf("template on the wire = %q", gotRes.TemplateName[:])
	}
}

func TestCreateVChipOversizeTemplate(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{}
	s := newFakeSession(t, f)

	name := strings.Repeat("t", raw.TemplateNameLen+1)
	if _, err := s.CardByID(0).ChipByID(0).CreateVChip(NewVChipSpec(name)); err == nil {
		t.Fatal("CreateVChip accepted an oversize template name")
	}
	if got := f.countCalls("CreateVDevice"); got != 0 {
		t.Fatalf("CreateVDevice reached the library %d times, want 0", got)
	}
}

func TestDestroyVChipForwardsID(t *testing.T) {
	t.Parallel()

	var gotID uint32
	f := &fakeRaw{
		destroyVDevice: func(cardID, chipID int32, vdevID uint32) int32 {
			gotID = vdevID
			return raw.StatusOK
		},
	}
	s := newFakeSession(t, f)
	chip := s.CardByID(0).ChipByID(0)

	if err := chip.DestroyVChip(104); err != nil {
		t.Fatalf("DestroyVChip returned error: %v", err)
	}
	if gotID != 104 {
		t.Fatalf("forwarded id = %d, want 104", gotID)
	}

	if err := chip.DestroyVChip(VChipDestroyAll); err != nil {
		t.Fatalf("DestroyVChip(all) returned error: %v", err)
	}
	if gotID != raw.VDevDestroyAll {
		t.Fatalf("forwarded id = %d, want the destroy-all sentinel %d", gotID, raw.VDevDestroyAll)
	}
}
