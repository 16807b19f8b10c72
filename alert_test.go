package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []AlertEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev AlertEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Events() []AlertEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]AlertEvent(nil), n.events...)
}

var sweepTime = time.Date(2026, 10, 18, 9, 30, 5, 0, time.Local)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := *DefaultConfig()
	cfg.Log.Path = filepath.Join(t.TempDir(), "devices_log.txt")
	cfg.Interval = 10 * time.Millisecond
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestDispatch_EndToEndUnknownDevice(t *testing.T) {
	cfg := testConfig(t)
	n := &recordingNotifier{}
	d := NewDispatcher(cfg, n, zap.NewNop())

	rec := DeviceRecord{Name: unknownName, IP: "10.0.0.5", MAC: "aa:bb:cc:dd:ee:ff"}
	require.NoError(t, d.Dispatch(context.Background(), sweepTime, []DeviceRecord{rec}))

	want := "Devices found at 2026-10-18 09:30:05\n" +
		"unknown 10.0.0.5 aa:bb:cc:dd:ee:ff\n" +
		strings.Repeat("-", 60) + "\n"
	assert.Equal(t, want, readFile(t, cfg.Log.Path))

	events := n.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "2026-10-18T09:30:05", events[0].Timestamp)
	assert.Contains(t, events[0].Description, "10.0.0.5")
}

func TestDispatch_AppendsAcrossCalls(t *testing.T) {
	cfg := testConfig(t)
	d := NewDispatcher(cfg, &recordingNotifier{}, zap.NewNop())

	require.NoError(t, d.Dispatch(context.Background(), sweepTime, []DeviceRecord{unknown}))
	require.NoError(t, d.Dispatch(context.Background(), sweepTime.Add(2*time.Second), []DeviceRecord{laptop, printer}))

	lines := strings.Split(strings.TrimRight(readFile(t, cfg.Log.Path), "\n"), "\n")
	assert.Equal(t, []string{
		"Devices found at 2026-10-18 09:30:05",
		"unknown 10.0.0.5 aa:bb:cc:dd:ee:ff",
		separator,
		"Devices found at 2026-10-18 09:30:07",
		"Laptop 10.0.0.9 11:22:33:44:55:66",
		"Printer 10.0.0.7 22:33:44:55:66:77",
		separator,
	}, lines)
}

func TestDispatch_EmptyDoesNothing(t *testing.T) {
	cfg := testConfig(t)
	n := &recordingNotifier{}
	d := NewDispatcher(cfg, n, zap.NewNop())

	require.NoError(t, d.Dispatch(context.Background(), sweepTime, nil))
	assert.NoFileExists(t, cfg.Log.Path)
	assert.Empty(t, n.Events())
}

func TestDispatch_UnknownModeSkipsKnownDevices(t *testing.T) {
	cfg := testConfig(t)
	n := &recordingNotifier{}
	d := NewDispatcher(cfg, n, zap.NewNop())

	require.NoError(t, d.Dispatch(context.Background(), sweepTime, []DeviceRecord{laptop, unknown, printer}))

	// every new record is logged, only the unknown one is notified
	assert.Contains(t, readFile(t, cfg.Log.Path), "Laptop 10.0.0.9 11:22:33:44:55:66")
	events := n.Events()
	require.Len(t, events, 1)
	assert.Equal(t, unknownDescription(unknown), events[0].Description)
}

func TestDispatch_AllModeSkipsIgnoreName(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notify.Mode = NotifyAll
	n := &recordingNotifier{}
	d := NewDispatcher(cfg, n, zap.NewNop())

	router := DeviceRecord{Name: defaultIgnoreName, IP: "10.0.0.1", MAC: "00:11:22:33:44:55"}
	require.NoError(t, d.Dispatch(context.Background(), sweepTime, []DeviceRecord{router, laptop, unknown}))

	events := n.Events()
	require.Len(t, events, 2)
	assert.Contains(t, events[0].Description, "Device: Laptop")
	assert.Contains(t, events[0].Description, "10.0.0.9")
	assert.Contains(t, events[1].Description, "Unknown device")
}

func TestDispatch_DeliveryFailureIsLoggedAndSkipped(t *testing.T) {
	cfg := testConfig(t)
	core, logs := observer.New(zap.WarnLevel)
	n := &recordingNotifier{err: ErrDeliveryFailed}
	d := NewDispatcher(cfg, n, zap.New(core))

	second := DeviceRecord{Name: unknownName, IP: "10.0.0.6", MAC: "aa:bb:cc:dd:ee:00"}
	err := d.Dispatch(context.Background(), sweepTime, []DeviceRecord{unknown, second})
	require.NoError(t, err)

	// no retry, and the second event is still attempted
	assert.Len(t, n.Events(), 2)
	assert.Equal(t, 2, logs.FilterMessage("Failed to send alert").Len())
}

func TestDispatch_LocalIOFailureStillNotifies(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Path = filepath.Join(t.TempDir(), "missing", "devices_log.txt")
	n := &recordingNotifier{}
	d := NewDispatcher(cfg, n, zap.NewNop())

	err := d.Dispatch(context.Background(), sweepTime, []DeviceRecord{unknown})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocalIO))
	assert.Len(t, n.Events(), 1)
}

func TestDispatch_EventLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.EventPath = filepath.Join(t.TempDir(), "event_log.txt")
	d := NewDispatcher(cfg, &recordingNotifier{}, zap.NewNop())

	require.NoError(t, d.Dispatch(context.Background(), sweepTime, []DeviceRecord{laptop, unknown}))

	got := readFile(t, cfg.Log.EventPath)
	assert.Equal(t, "Devices found at 2026-10-18 09:30:05\n"+
		"Unknown device detected on network. Device IP: 10.0.0.5, Device MAC: aa:bb:cc:dd:ee:ff\n"+
		separator+"\n", got)
}

func TestReadLocalLog(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, NewDeviceLog(cfg.Log.Path).Append(sweepTime, []DeviceRecord{laptop}))

	var sb strings.Builder
	require.NoError(t, readLocalLog(cfg.Log.Path, &sb))
	assert.Contains(t, sb.String(), "Laptop 10.0.0.9 11:22:33:44:55:66")
	assert.Contains(t, sb.String(), "--End of Log--")

	assert.Error(t, readLocalLog(filepath.Join(t.TempDir(), "nope.txt"), &sb))
}
