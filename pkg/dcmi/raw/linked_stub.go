//go:build !linux || !dcmi_cgo

package raw

import "errors"

// ErrLinkedUnavailable is returned by NewLinked in builds without the
// dcmi_cgo tag.
var ErrLinkedUnavailable = errors.New("dcmi: built without dcmi_cgo support")

// Linked is a placeholder in builds without the dcmi_cgo tag. NewLinked
// always fails here, so the embedded nil Interface is never called.
type Linked struct{ Interface }

// NewLinked reports that the link-time backend was not compiled in.
func NewLinked() (*Linked, error) {
	return nil, ErrLinkedUnavailable
}
