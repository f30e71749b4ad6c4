package dcmi

import (
	"errors"
	"fmt"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// Sentinel errors for the documented DCMI status codes. Library calls wrap
// them with the raw operation name; match with errors.Is.
var (
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrOperationNotPermitted = errors.New("operation not permitted")
	ErrMemoryOperateFail     = errors.New("memory operation failed")
	ErrSecureFunctionFail    = errors.New("secure function failure")
	ErrInnerError            = errors.New("inner error")
	ErrTimeout               = errors.New("timeout")
	ErrInvalidDeviceID       = errors.New("invalid device id")
	ErrDeviceNotExist        = errors.New("device not exist")
	ErrIoctlFail             = errors.New("ioctl failure")
	ErrSendMessageFail       = errors.New("send message failure")
	ErrReceiveMessageFail    = errors.New("receive message failure")
	ErrNotReady              = errors.New("not ready")
	ErrNotSupportInContainer = errors.New("not supported in container")
	ErrResetFail             = errors.New("reset failure")
	ErrAbortOperation        = errors.New("reset operation aborted")
	ErrUpgrading             = errors.New("upgrade in progress")
	ErrResourceOccupied      = errors.New("device resource occupied")
	ErrNotSupported          = errors.New("device or function not supported")
)

// Decode-time errors. They report malformed or sentinel-coded vendor data,
// not a failed call.
var (
	// ErrInvalidText marks a string buffer that is not NUL-terminated valid
	// UTF-8.
	ErrInvalidText = errors.New("invalid text field")
	// ErrInvalidData marks the 0x7ffd sensor sentinel ("invalid data").
	ErrInvalidData = errors.New("invalid data")
	// ErrReadFailure marks the 0x7fff sensor sentinel ("read error").
	ErrReadFailure = errors.New("data read error")
)

// UnknownStatusError reports a status code outside the documented table. The
// raw code is preserved for diagnostics.
type UnknownStatusError struct {
	Code int32
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown error, status code %d", e.Code)
}

var statusErrors = map[int32]error{
	raw.StatusInvalidParameter:      ErrInvalidParameter,
	raw.StatusOperationNotPermitted: ErrOperationNotPermitted,
	raw.StatusMemoryOperateFail:     ErrMemoryOperateFail,
	raw.StatusSecureFunctionFail:    ErrSecureFunctionFail,
	raw.StatusInnerError:            ErrInnerError,
	raw.StatusTimeout:               ErrTimeout,
	raw.StatusInvalidDeviceID:       ErrInvalidDeviceID,
	raw.StatusDeviceNotExist:        ErrDeviceNotExist,
	raw.StatusIoctlFail:             ErrIoctlFail,
	raw.StatusSendMessageFail:       ErrSendMessageFail,
	raw.StatusReceiveMessageFail:    ErrReceiveMessageFail,
	raw.StatusNotReady:              ErrNotReady,
	raw.StatusNotSupportInContainer: ErrNotSupportInContainer,
	raw.StatusResetFail:             ErrResetFail,
	raw.StatusAbortOperation:        ErrAbortOperation,
	raw.StatusUpgrading:             ErrUpgrading,
	raw.StatusResourceOccupied:      ErrResourceOccupied,
	raw.StatusNotSupported:          ErrNotSupported,
}

// translateStatus maps a raw status code to an error. Zero is success; every
// documented code maps to its sentinel and anything else to an
// *UnknownStatusError, so the function is total over int32.
func translateStatus(code int32) error {
	if code == raw.StatusOK {
		return nil
	}
	if err, ok := statusErrors[code]; ok {
		return err
	}
	return &UnknownStatusError{Code: code}
}

// call checks the status of one foreign call and wraps any failure with the
// raw operation name, e.g. "dcmi_get_device_health: device not exist".
func call(op string, status int32) error {
	if err := translateStatus(status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
