package raw

// Library location defaults. The install directory can be overridden through
// the HW_DCMI_PATH environment variable, which callers are expected to read
// themselves and pass down explicitly.
const (
	DefaultLibraryDir = "/usr/local/dcmi"
	LibraryName       = "libdcmi.so"
	EnvLibraryDir     = "HW_DCMI_PATH"
)

// Fixed buffer capacities from dcmi_interface_api.h. Oversized results are the
// vendor library's problem and surface as a non-zero status, not as silent
// truncation on this side.
const (
	DCMIVersionLen      = 16
	DriverVersionLen    = 64
	CardListLen         = 64
	ErrorCodeListLen    = 128
	ErrorStringLen      = 256
	ErrorStringShortLen = 48
	ChipStringLen       = 32
	ELabelFieldLen      = 128
	DieIDCount          = 5
	AICPUCoreCount      = 16
	TemplateNameLen     = 32
)

// Sentinel values overloading otherwise ordinary fields.
const (
	// ValueInvalid and ValueReadError are magic readings reported by sensor
	// queries (temperature, voltage) in place of real data.
	ValueInvalid   = 0x7ffd
	ValueReadError = 0x7fff

	// HealthDeviceNotFound is reported by dcmi_get_device_health when the
	// queried device does not exist or has not started.
	HealthDeviceNotFound uint32 = 0xFFFFFFFF

	// ChipAbsent marks a missing MCU or CPU slot in enumeration results.
	ChipAbsent int32 = -1

	// VDevAutoID asks the library to pick the virtual device or group id.
	VDevAutoID uint32 = 0xFFFFFFFF

	// VDevDestroyAll destroys every virtual device on a chip when passed to
	// dcmi_set_destroy_vdevice.
	VDevDestroyAll uint32 = 65535
)

// Unit type values returned by dcmi_get_device_type.
const (
	UnitNPU     int32 = 0
	UnitMCU     int32 = 1
	UnitCPU     int32 = 2
	UnitInvalid int32 = 3
)

// Die selector values for dcmi_get_device_die_v2.
const (
	DieNDie int32 = 0
	DieVDie int32 = 1
)

// Device selector values for dcmi_get_device_ecc_info. The vendor manual
// documents ECC queries for DDR and HBM only.
const (
	DeviceTypeDDR  int32 = 0
	DeviceTypeSRAM int32 = 1
	DeviceTypeHBM  int32 = 2
	DeviceTypeNPU  int32 = 3
)

// Frequency selector values for dcmi_get_device_frequency.
const (
	FreqDDR           int32 = 1
	FreqCtrlCPU       int32 = 2
	FreqHBM           int32 = 6
	FreqAICoreCurrent int32 = 7
	FreqAICoreRated   int32 = 9
)

// Utilization selector values for dcmi_get_device_utilization_rate.
const (
	UtilMemory          int32 = 1
	UtilAICore          int32 = 2
	UtilAICPU           int32 = 3
	UtilCtrlCPU         int32 = 4
	UtilMemoryBandwidth int32 = 5
	UtilHBM             int32 = 6
	UtilHBMBandwidth    int32 = 10
)

// Status codes returned by every DCMI call. Zero is success; everything else
// is a documented failure or, for values outside this table, an undocumented
// one.
const (
	StatusOK                    int32 = 0
	StatusInvalidParameter      int32 = -8001
	StatusOperationNotPermitted int32 = -8002
	StatusMemoryOperateFail     int32 = -8003
	StatusSecureFunctionFail    int32 = -8004
	StatusInnerError            int32 = -8005
	StatusTimeout               int32 = -8006
	StatusInvalidDeviceID       int32 = -8007
	StatusDeviceNotExist        int32 = -8008
	StatusIoctlFail             int32 = -8009
	StatusSendMessageFail       int32 = -8010
	StatusReceiveMessageFail    int32 = -8011
	StatusNotReady              int32 = -8012
	StatusNotSupportInContainer int32 = -8013
	StatusResetFail             int32 = -8015
	StatusAbortOperation        int32 = -8016
	StatusUpgrading             int32 = -8017
	StatusResourceOccupied      int32 = -8020
	StatusNotSupported          int32 = -8255
)
