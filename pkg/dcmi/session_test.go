package dcmi

import (
	"errors"
	"testing"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

func TestNewRunsInit(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{}
	newFakeSession(t, f)

	if got := f.countCalls("Init"); got != 1 {
		t.Fatalf("Init called %d times, want 1", got)
	}
}

func TestNewInitFailure(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{init: func() int32 { return raw.StatusNotReady }}
	_, err := New(WithRawInterface(f))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("New with failing init = %v, want ErrNotReady", err)
	}
}

func TestParseBackend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"dynamic", BackendDynamic, false},
		{"linked", BackendLinked, false},
		{"", 0, true},
		{"static", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseBackend(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBackend(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBackend(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBackend(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDCMIVersion(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		dcmiVersion: func() ([raw.DCMIVersionLen]byte, int32) {
			var buf [raw.DCMIVersionLen]byte
			copy(buf[:], "1.8.5")
			return buf, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	got, err := s.DCMIVersion()
	if err != nil {
		t.Fatalf("DCMIVersion returned error: %v", err)
	}
	if got != "1.8.5" {
		t.Fatalf("DCMIVersion = %q, want %q", got, "1.8.5")
	}
}

func TestDCMIVersionMissingNUL(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		dcmiVersion: func() ([raw.DCMIVersionLen]byte, int32) {
			var buf [raw.DCMIVersionLen]byte
			for i := range buf {
				buf[i] = 'a'
			}
			return buf, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	if _, err := s.DCMIVersion(); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("DCMIVersion without NUL = %v, want ErrInvalidText", err)
	}
}

func TestDriverVersion(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		driverVersion: func() ([raw.DriverVersionLen]byte, int32) {
			var buf [raw.DriverVersionLen]byte
			copy(buf[:], "23.0.rc3")
			return buf, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	got, err := s.DriverVersion()
	if err != nil {
		t.Fatalf("DriverVersion returned error: %v", err)
	}
	if got != "23.0.rc3" {
		t.Fatalf("DriverVersion = %q, want %q", got, "23.0.rc3")
	}
}

func TestDeviceDriverVersionIgnoresReportedLength(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		version: func(cardID, chipID int32) ([raw.DriverVersionLen]byte, int32, int32) {
			var buf [raw.DriverVersionLen]byte
			copy(buf[:], "23.0.rc3")
			// A deliberately wrong out-length; the decode must not trust it.
			return buf, 2, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	got, err := s.DeviceDriverVersion(0, 0)
	if err != nil {
		t.Fatalf("DeviceDriverVersion returned error: %v", err)
	}
	if got != "23.0.rc3" {
		t.Fatalf("DeviceDriverVersion = %q, want %q", got, "23.0.rc3")
	}
}

func TestCardsKeepsCountAndOrder(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		cardList: func() (int32, [raw.CardListLen]int32, int32) {
			var ids [raw.CardListLen]int32
			ids[0], ids[1], ids[2] = 3, 0, 7
			// Slots beyond count hold stale data that must not leak out.
			ids[3] = 99
			return 3, ids, raw.StatusOK
		},
	}
	s := newFakeSession(t, f)

	cards, err := s.Cards()
	if err != nil {
		t.Fatalf("Cards returned error: %v", err)
	}
	want := []uint32{3, 0, 7}
	if len(cards) != len(want) {
		t.Fatalf("expected %d cards, got %d", len(want), len(cards))
	}
	for i, card := range cards {
		if card.ID != want[i] {
			t.Errorf("cards[%d].ID = %d, want %d", i, card.ID, want[i])
		}
	}
}

func TestCardsFailure(t *testing.T) {
	t.Parallel()

	f := &fakeRaw{
		cardList: func() (int32, [raw.CardListLen]int32, int32) {
			return 0, [raw.CardListLen]int32{}, raw.StatusInnerError
		},
	}
	s := newFakeSession(t, f)

	if _, err := s.Cards(); !errors.Is(err, ErrInnerError) {
		t.Fatalf("Cards = %v, want ErrInnerError", err)
	}
}

func TestCardByID(t *testing.T) {
	t.Parallel()

	s := newFakeSession(t, &fakeRaw{})
	if card := s.CardByID(5); card.ID != 5 {
		t.Fatalf("CardByID(5).ID = %d", card.ID)
	}
}
