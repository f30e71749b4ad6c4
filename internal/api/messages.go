package api

import (
	"github.com/npu-tools/go-dcmi/internal/healthwatch"
	"github.com/npu-tools/go-dcmi/internal/inventory"
	"github.com/npu-tools/go-dcmi/internal/telemetry"
)

// HelloMessage is the initial payload sent on WebSocket connection.
type HelloMessage struct {
	Type       string             `json:"type"`
	IntervalMS int                `json:"interval_ms"`
	Devices    []inventory.Device `json:"devices"`
	Features   map[string]bool    `json:"features"`
}

// NewHelloMessage constructs a hello payload.
func NewHelloMessage(intervalMS int, devices []inventory.Device, features map[string]bool) HelloMessage {
	return HelloMessage{
		Type:       "hello",
		IntervalMS: intervalMS,
		Devices:    devices,
		Features:   features,
	}
}

// StatsMessage wraps a telemetry sample for transport.
type StatsMessage struct {
	Type string `json:"type"`
	telemetry.Sample
}

// NewStatsMessage constructs a stats payload.
func NewStatsMessage(sample telemetry.Sample) StatsMessage {
	return StatsMessage{
		Type:   "stats",
		Sample: sample,
	}
}

// HealthMessage wraps a health snapshot for transport.
type HealthMessage struct {
	Type string `json:"type"`
	healthwatch.Snapshot
}

// NewHealthMessage constructs a health payload.
func NewHealthMessage(snapshot healthwatch.Snapshot) HealthMessage {
	return HealthMessage{
		Type:     "health",
		Snapshot: snapshot,
	}
}

// ErrorMessage communicates an error condition to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ClientMessage is a generic envelope used for decoding inbound client messages.
type ClientMessage struct {
	Type string `json:"type"`
}

// SubscribeMessage requests subscription to device telemetry.
type SubscribeMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"device_id"`
}

// PongMessage is the response to a ping.
type PongMessage struct {
	Type string `json:"type"`
}
