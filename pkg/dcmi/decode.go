package dcmi

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// decodeText extracts the NUL-terminated string at the front of a fixed-size
// vendor buffer. A buffer without a NUL, or with invalid UTF-8 before it, is
// a decode failure, never a truncation.
func decodeText(buf []byte) (string, error) {
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return "", fmt.Errorf("%w: no NUL terminator in %d bytes", ErrInvalidText, len(buf))
	}
	if !utf8.Valid(buf[:i]) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidText)
	}
	return string(buf[:i]), nil
}

// checkSensor intercepts the two magic readings sensor queries report in
// place of real data.
func checkSensor(value int64) error {
	switch value {
	case raw.ValueInvalid:
		return ErrInvalidData
	case raw.ValueReadError:
		return ErrReadFailure
	}
	return nil
}

// decodeLaneMask expands a per-lane status word into 32 booleans, bit 0
// first. All 32 lanes are kept; callers filter the physically meaningful
// subset themselves.
func decodeLaneMask(word uint32) [32]bool {
	var lanes [32]bool
	for i := range lanes {
		lanes[i] = word&(1<<i) != 0
	}
	return lanes
}

// encodeLaneMask is the inverse of decodeLaneMask.
func encodeLaneMask(lanes [32]bool) uint32 {
	var word uint32
	for i, set := range lanes {
		if set {
			word |= 1 << i
		}
	}
	return word
}
