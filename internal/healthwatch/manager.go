// Package healthwatch periodically scans device health and active fault
// codes and fan-outs the results to subscribers.
package healthwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/npu-tools/go-dcmi/internal/config"
	"github.com/npu-tools/go-dcmi/internal/inventory"
	"github.com/npu-tools/go-dcmi/pkg/dcmi"
)

// Manager orchestrates health scans and fan-out to subscribers.
type Manager struct {
	cfg    config.HealthConfig
	logger *slog.Logger

	deviceIDs []string
	chips     map[string]dcmi.Chip

	mu          sync.RWMutex
	latest      map[string]Snapshot
	subscribers map[string]map[*subscriber]struct{}
	lastScan    time.Time
	closeOnce   sync.Once
}

// NewManager constructs a health watcher over the NPU devices in the
// inventory. Non-NPU devices have no health query and are skipped.
func NewManager(cfg config.HealthConfig, session *dcmi.Session, devices []inventory.Device, logger *slog.Logger) (*Manager, error) {
	if cfg.ScanInterval <= 0 {
		return nil, fmt.Errorf("scan interval must be > 0")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	deviceIDs := make([]string, 0, len(devices))
	chips := make(map[string]dcmi.Chip, len(devices))
	for _, dev := range devices {
		if !dev.IsNPU() {
			continue
		}
		deviceIDs = append(deviceIDs, dev.ID)
		chips[dev.ID] = session.CardByID(dev.CardID).ChipByID(dev.ChipID)
	}

	manager := &Manager{
		cfg:         cfg,
		logger:      logger.With("component", "healthwatch_manager"),
		deviceIDs:   deviceIDs,
		chips:       chips,
		latest:      make(map[string]Snapshot),
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
	return manager, nil
}

// Run starts the periodic health scanner until the context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if !m.cfg.Enable || len(m.deviceIDs) == 0 {
		<-ctx.Done()
		return m.Close()
	}

	m.logger.Info("health watcher started", "interval", m.cfg.ScanInterval)
	m.performScan(time.Now())

	ticker := time.NewTicker(m.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("health watcher stopping", "reason", ctx.Err())
			return m.Close()
		case now := <-ticker.C:
			m.performScan(now)
		}
	}
}

// Latest returns the most recent snapshot for the supplied device.
func (m *Manager) Latest(deviceID string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.latest[deviceID]
	return snapshot, ok
}

// Subscribe registers for health snapshot updates for the supplied device.
func (m *Manager) Subscribe(deviceID string) (<-chan Snapshot, func(), error) {
	if !m.cfg.Enable {
		return nil, nil, fmt.Errorf("health watcher disabled")
	}
	if _, ok := m.chips[deviceID]; !ok {
		return nil, nil, fmt.Errorf("unknown device %q", deviceID)
	}

	sub := newSubscriber()

	m.mu.Lock()
	if _, ok := m.subscribers[deviceID]; !ok {
		m.subscribers[deviceID] = make(map[*subscriber]struct{})
	}
	m.subscribers[deviceID][sub] = struct{}{}

	if snapshot, ok := m.latest[deviceID]; ok {
		sub.send(snapshot)
	}
	m.mu.Unlock()

	unsubscribe := func() {
		m.removeSubscriber(deviceID, sub)
	}
	return sub.channel(), unsubscribe, nil
}

// DeviceIDs enumerates devices tracked by the watcher.
func (m *Manager) DeviceIDs() []string {
	ids := make([]string, len(m.deviceIDs))
	copy(ids, m.deviceIDs)
	return ids
}

// Ready reports whether at least one scan has been performed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.lastScan.IsZero()
}

func (m *Manager) performScan(now time.Time) {
	for _, deviceID := range m.deviceIDs {
		m.publish(m.scanDevice(deviceID, now))
	}

	m.mu.Lock()
	m.lastScan = now
	m.mu.Unlock()
}

func (m *Manager) scanDevice(deviceID string, now time.Time) Snapshot {
	snapshot := Snapshot{DeviceID: deviceID, Timestamp: now.UTC()}
	chip := m.chips[deviceID]

	state, err := chip.Health()
	switch {
	case errors.Is(err, dcmi.ErrDeviceNotExist):
		snapshot.Health = HealthMissing
		return snapshot
	case err != nil:
		m.logger.Warn("health query failed", "device_id", deviceID, "err", err)
		snapshot.Health = HealthUnknown
		return snapshot
	}

	snapshot.Health = state.String()
	code := uint32(state)
	snapshot.HealthCode = &code

	codes, err := chip.ErrorCodes()
	if err != nil {
		m.logger.Debug("error code query failed", "device_id", deviceID, "err", err)
		return snapshot
	}
	if len(codes) > m.cfg.MaxFaults {
		codes = codes[:m.cfg.MaxFaults]
	}
	for _, code := range codes {
		message, err := chip.ErrorDescription(code, false)
		if err != nil {
			m.logger.Debug("error description query failed", "device_id", deviceID, "code", code, "err", err)
		}
		snapshot.Faults = append(snapshot.Faults, Fault{Code: code, Message: message})
	}

	return snapshot
}

func (m *Manager) publish(snapshot Snapshot) {
	m.mu.Lock()
	m.latest[snapshot.DeviceID] = snapshot
	subs := make([]*subscriber, 0, len(m.subscribers[snapshot.DeviceID]))
	for sub := range m.subscribers[snapshot.DeviceID] {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.send(snapshot)
	}
}

func (m *Manager) removeSubscriber(deviceID string, sub *subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if subs, ok := m.subscribers[deviceID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(m.subscribers, deviceID)
		}
	}
	sub.close()
}

// Close closes every subscriber channel. Safe for repeated use.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		var subs []*subscriber
		for _, set := range m.subscribers {
			for sub := range set {
				subs = append(subs, sub)
			}
		}
		m.subscribers = make(map[string]map[*subscriber]struct{})
		m.mu.Unlock()

		for _, sub := range subs {
			sub.close()
		}
	})
	return nil
}

type subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

func newSubscriber() *subscriber {
	return &subscriber{
		ch: make(chan Snapshot, 1),
	}
}

func (s *subscriber) channel() <-chan Snapshot {
	return s.ch
}

func (s *subscriber) send(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snapshot:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	close(s.ch)
	s.closed = true
}
