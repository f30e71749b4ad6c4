package healthwatch

import "time"

// Health values reported beyond the library's own states.
const (
	// HealthMissing marks a device that answered enumeration at startup but
	// no longer answers health queries.
	HealthMissing = "missing"
	// HealthUnknown marks a device whose health query failed for any other
	// reason.
	HealthUnknown = "unknown"
)

// Snapshot represents one health scan result for a device.
type Snapshot struct {
	DeviceID   string    `json:"device_id"`
	Timestamp  time.Time `json:"ts"`
	Health     string    `json:"health"`
	HealthCode *uint32   `json:"health_code"`
	Faults     []Fault   `json:"faults"`
}

// Fault is one active error condition reported by a device.
type Fault struct {
	Code    uint32 `json:"code"`
	Message string `json:"message"`
}
