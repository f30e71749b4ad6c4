package telemetry

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

type dynamicPower struct {
	*raw.Simulator
	power atomic.Int32
}

func (d *dynamicPower) GetDevicePowerInfo(cardID, chipID int32) (int32, int32) {
	return d.power.Load(), raw.StatusOK
}

func newDynamicPower() *dynamicPower {
	sim := raw.NewSimulator()
	sim.Cards = []*raw.SimCard{{ID: 0, NPUs: []*raw.SimChip{{ID: 0, Unit: raw.UnitNPU}}}}
	return &dynamicPower{Simulator: sim}
}

func TestManagerSubscribeAndReady(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := newDynamicPower()
	backend.power.Store(100)
	session := newSession(t, backend)

	deviceID := "card0-chip0"
	reader := NewReader(deviceID, session.CardByID(0).ChipByID(0), logger)

	manager, err := NewManager(15*time.Millisecond, map[string]*Reader{deviceID: reader}, logger)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	if manager.Ready() {
		t.Fatalf("manager must not be ready before the first sample")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = manager.Run(ctx)
	}()

	waitFor(t, 500*time.Millisecond, manager.Ready)

	ch, unsubscribe, err := manager.Subscribe(deviceID)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer unsubscribe()

	first := awaitSample(t, ch)
	assertFloatEqual(t, first.Metrics.PowerW, 10)

	backend.power.Store(250)
	awaitPower(t, ch, 25)

	if latest, ok := manager.Latest(deviceID); !ok || latest.Metrics.PowerW == nil || *latest.Metrics.PowerW != 25 {
		t.Fatalf("Latest did not return expected sample: %+v", latest)
	}

	ids := manager.DeviceIDs()
	if len(ids) != 1 || ids[0] != deviceID {
		t.Fatalf("DeviceIDs returned %v", ids)
	}

	if _, _, err := manager.Subscribe("unknown"); err == nil {
		t.Fatalf("Subscribe should fail for unknown device id")
	}
}

func TestManagerDropsOldestOnBackpressure(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := newDynamicPower()
	backend.power.Store(50)
	session := newSession(t, backend)

	deviceID := "card0-chip0"
	reader := NewReader(deviceID, session.CardByID(0).ChipByID(0), logger)

	manager, err := NewManager(10*time.Millisecond, map[string]*Reader{deviceID: reader}, logger)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = manager.Run(ctx)
	}()

	waitFor(t, 500*time.Millisecond, manager.Ready)

	ch, unsubscribe, err := manager.Subscribe(deviceID)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer unsubscribe()

	// Consume initial sample.
	_ = awaitSample(t, ch)

	// Leave the channel unread across several ticks; only the newest sample
	// may survive.
	backend.power.Store(150)
	time.Sleep(25 * time.Millisecond)
	backend.power.Store(350)
	time.Sleep(25 * time.Millisecond)

	awaitPower(t, ch, 35)
}

func TestManagerCloseClosesSubscribers(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := newDynamicPower()
	session := newSession(t, backend)

	deviceID := "card0-chip0"
	reader := NewReader(deviceID, session.CardByID(0).ChipByID(0), logger)

	manager, err := NewManager(10*time.Millisecond, map[string]*Reader{deviceID: reader}, logger)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		_ = manager.Run(ctx)
		close(runDone)
	}()

	waitFor(t, 500*time.Millisecond, manager.Ready)

	ch, _, err := manager.Subscribe(deviceID)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel not closed after shutdown")
		}
	}
}

func awaitSample(t *testing.T, ch <-chan Sample) Sample {
	t.Helper()
	select {
	case sample, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return sample
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for sample")
		return Sample{}
	}
}

// awaitPower reads samples until one carries the wanted power value. Samples
// published before the backend change may still be in flight, so earlier
// values are skipped rather than failed on.
func awaitPower(t *testing.T, ch <-chan Sample, want float64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case sample, ok := <-ch:
			if !ok {
				t.Fatal("subscription channel closed unexpectedly")
			}
			if sample.Metrics.PowerW != nil && *sample.Metrics.PowerW == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for sample with power %.1f", want)
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
