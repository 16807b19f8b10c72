package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Alerter receives the new records of a cycle.
type Alerter interface {
	Dispatch(ctx context.Context, at time.Time, records []DeviceRecord) error
}

// CycleResult describes one completed discovery cycle.
type CycleResult struct {
	At         time.Time
	Discovered int
	Records    []DeviceRecord
	New        []DeviceRecord
	Err        error
}

type Status struct {
	Running  bool
	Snapshot []DeviceRecord
	Last     *CycleResult
}

// Monitor owns the monitoring session: the sweep loop, the retained snapshot
// and the running flag.
//
// The snapshot is replaced only by a cycle that found at least one new
// record. Cycles without new records leave it as it was, even if hosts left
// the network.
type Monitor struct {
	prober   Prober
	registry *Registry
	alerter  Alerter
	policy   DiffPolicy
	dedupe   bool
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	// cycleMu serializes cycles so the snapshot has a single writer at a time.
	cycleMu sync.Mutex

	mu       sync.Mutex
	running  bool
	snapshot []DeviceRecord
	last     *CycleResult
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewMonitor(cfg Config, prober Prober, registry *Registry, alerter Alerter, log *zap.Logger) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	policy := cfg.DiffPolicy
	if policy == "" {
		policy = DiffStructural
	}

	return &Monitor{
		prober:   prober,
		registry: registry,
		alerter:  alerter,
		policy:   policy,
		dedupe:   cfg.DedupeReplies,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start launches the monitor loop. It returns false, and does nothing, if a
// loop is already running.
func (m *Monitor) Start(ctx context.Context) bool {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.running = true
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.log.Info("Monitoring started",
		zap.Duration("interval", m.interval),
		zap.String("diff_policy", string(m.policy)))

	go m.loop(loopCtx, done)
	return true
}

// Stop cancels the loop and waits for the cycle in progress to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the loop exits.
func (m *Monitor) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Running:  m.running,
		Snapshot: append([]DeviceRecord(nil), m.snapshot...),
	}
	if m.last != nil {
		last := *m.last
		st.Last = &last
	}
	return st
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.cancel = nil
		m.mu.Unlock()
		close(done)
		m.log.Info("Monitoring stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		m.RunCycle(ctx)

		t := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// RunCycle runs one sweep → resolve → diff → alert pass. Every failure is
// local to the cycle and reported in the result.
func (m *Monitor) RunCycle(ctx context.Context) CycleResult {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	res := CycleResult{At: m.now()}

	hosts, err := m.prober.Sweep(ctx)
	if err != nil {
		m.log.Error("Sweep failed", zap.Error(err))
		res.Err = err
		m.setLast(res)
		return res
	}
	if m.dedupe {
		hosts = dedupeByIdentity(hosts)
	}

	res.Discovered = len(hosts)
	res.Records = m.registry.Resolve(hosts)

	m.mu.Lock()
	previous := m.snapshot
	m.mu.Unlock()

	res.New = Diff(previous, res.Records, m.policy)
	m.log.Debug("Cycle complete",
		zap.Int("discovered", res.Discovered),
		zap.Int("new", len(res.New)))

	if len(res.New) > 0 {
		for _, r := range res.New {
			m.log.Info("✅ New device",
				zap.String("name", r.Name),
				zap.String("ip", r.IP),
				zap.String("mac", r.MAC))
		}

		if err := m.alerter.Dispatch(ctx, res.At, res.New); err != nil {
			m.log.Error("Alert dispatch failed", zap.Error(err))
			res.Err = err
		}

		m.mu.Lock()
		m.snapshot = res.Records
		m.mu.Unlock()
	}

	m.setLast(res)
	return res
}

func (m *Monitor) setLast(res CycleResult) {
	m.mu.Lock()
	m.last = &res
	m.mu.Unlock()
}
