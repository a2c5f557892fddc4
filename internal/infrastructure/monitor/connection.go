package monitor

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/tracker"
)

const pingTimeout = 2 * time.Second

// Probe names a backend whose health is checked on every refresh.
type Probe struct {
	Name   string
	Pinger repository.Pinger
}

// Sizer is implemented by backends that can count the records they hold.
type Sizer interface {
	Size() (int, error)
}

// StatsSource supplies the store counters reported alongside backend health.
type StatsSource interface {
	Stats() tracker.Stats
}

type Monitor struct {
	probes []Probe
	stats  StatsSource

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(probes []Probe, stats StatsSource, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		stats:    stats,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

// BackendOnline reports the last ping result of the named backend. A backend
// that is not probed counts as online.
func (m *Monitor) BackendOnline(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ok, probed := m.status.Backends[name]
	return !probed || ok
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := m.status
	status.Backends = maps.Clone(m.status.Backends)
	status.Records = maps.Clone(m.status.Records)
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh pings every probe and samples the store counters.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Backends:  make(map[string]bool, len(m.probes)),
		LastCheck: time.Now(),
	}
	for _, p := range m.probes {
		online := m.ping(ctx, p)
		status.Backends[p.Name] = online
		if sizer, ok := p.Pinger.(Sizer); ok && online {
			if n, err := sizer.Size(); err == nil {
				if status.Records == nil {
					status.Records = make(map[string]int)
				}
				status.Records[p.Name] = n
			} else {
				m.logger.Warn("backend size check failed", zap.String("backend", p.Name), zap.Error(err))
			}
		}
	}
	if m.stats != nil {
		status.Stats = m.stats.Stats()
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) ping(ctx context.Context, p Probe) bool {
	if p.Pinger == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Pinger.Ping(ctx); err != nil {
		m.logger.Warn("backend ping failed", zap.String("backend", p.Name), zap.Error(err))
		return false
	}
	return true
}
