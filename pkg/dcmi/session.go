// Package dcmi is a typed query layer over the Huawei DCMI management
// library for Ascend accelerator cards.
//
// A Session wraps an initialized library handle and enumerates Cards; a Card
// enumerates its Chips (NPU, and optionally MCU and CPU); a Chip answers
// telemetry queries and manages virtual partitions. All results are decoded
// value snapshots with no aliasing back to vendor memory, and every failure
// is an error value: vendor status codes map to the sentinel errors in this
// package, never to panics.
//
// A Session is safe to share between goroutines. Whether the vendor library
// itself tolerates concurrent calls is not documented; callers that need
// certainty must serialize access themselves.
package dcmi

import (
	"fmt"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// Backend selects how the vendor library is reached.
type Backend int

const (
	// BackendDynamic loads libdcmi.so at runtime.
	BackendDynamic Backend = iota
	// BackendLinked calls a link-time libdcmi, available only in binaries
	// built with the dcmi_cgo tag.
	BackendLinked
)

func (b Backend) String() string {
	switch b {
	case BackendDynamic:
		return "dynamic"
	case BackendLinked:
		return "linked"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend maps the configuration spelling of a backend to its value.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "dynamic":
		return BackendDynamic, nil
	case "linked":
		return BackendLinked, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

type options struct {
	libraryDir string
	backend    Backend
	raw        raw.Interface
}

// Option configures New.
type Option func(*options)

// WithLibraryDir sets the directory holding libdcmi.so for the dynamic
// backend. The default is the vendor install path /usr/local/dcmi; callers
// honoring the HW_DCMI_PATH environment variable resolve it themselves and
// pass the result here.
func WithLibraryDir(dir string) Option {
	return func(o *options) { o.libraryDir = dir }
}

// WithBackend selects the dynamic or linked backend.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithRawInterface injects a caller-supplied raw surface and skips backend
// construction entirely. Intended for tests and simulators.
func WithRawInterface(ri raw.Interface) Option {
	return func(o *options) { o.raw = ri }
}

// Session is a process-wide handle to the initialized management library.
// There is no teardown; the vendor interface keeps its state for the process
// lifetime.
type Session struct {
	raw raw.Interface
}

// New constructs the selected backend, runs dcmi_init and returns the
// session.
func New(opts ...Option) (*Session, error) {
	o := options{libraryDir: raw.DefaultLibraryDir, backend: BackendDynamic}
	for _, opt := range opts {
		opt(&o)
	}
	ri := o.raw
	if ri == nil {
		switch o.backend {
		case BackendDynamic:
			d, err := raw.NewDynamic(o.libraryDir)
			if err != nil {
				return nil, err
			}
			ri = d
		case BackendLinked:
			l, err := raw.NewLinked()
			if err != nil {
				return nil, err
			}
			ri = l
		default:
			return nil, fmt.Errorf("unknown backend %d", o.backend)
		}
	}
	if err := call("dcmi_init", ri.Init()); err != nil {
		return nil, err
	}
	return &Session{raw: ri}, nil
}

// DCMIVersion reports the version of the management library itself.
func (s *Session) DCMIVersion() (string, error) {
	buf, status := s.raw.GetDCMIVersion()
	if err := call("dcmi_get_dcmi_version", status); err != nil {
		return "", err
	}
	v, err := decodeText(buf[:])
	if err != nil {
		return "", fmt.Errorf("dcmi_get_dcmi_version: %w", err)
	}
	return v, nil
}

// DriverVersion reports the installed NPU driver version.
func (s *Session) DriverVersion() (string, error) {
	buf, status := s.raw.GetDriverVersion()
	if err := call("dcmi_get_driver_version", status); err != nil {
		return "", err
	}
	v, err := decodeText(buf[:])
	if err != nil {
		return "", fmt.Errorf("dcmi_get_driver_version: %w", err)
	}
	return v, nil
}

// DeviceDriverVersion reports the driver version through the old per-device
// query. The reported length is ignored; the buffer is decoded to the first
// NUL like every other text field.
//
// Deprecated: the driver version is not device-specific, use DriverVersion.
func (s *Session) DeviceDriverVersion(cardID, chipID uint32) (string, error) {
	buf, _, status := s.raw.GetVersion(int32(cardID), int32(chipID))
	if err := call("dcmi_get_version", status); err != nil {
		return "", err
	}
	v, err := decodeText(buf[:])
	if err != nil {
		return "", fmt.Errorf("dcmi_get_version: %w", err)
	}
	return v, nil
}

// Cards enumerates the management units present in the system, in the order
// the library reports them.
func (s *Session) Cards() ([]Card, error) {
	count, ids, status := s.raw.GetCardList()
	if err := call("dcmi_get_card_list", status); err != nil {
		return nil, err
	}
	n := max(0, min(int(count), len(ids)))
	cards := make([]Card, 0, n)
	for _, id := range ids[:n] {
		cards = append(cards, Card{session: s, ID: uint32(id)})
	}
	return cards, nil
}

// CardByID builds a card handle without checking that the id exists;
// queries on a bad id fail with ErrInvalidDeviceID or ErrDeviceNotExist.
func (s *Session) CardByID(id uint32) Card {
	return Card{session: s, ID: id}
}
