package lifecycle

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

// Phase orders shutdown. All hooks of a phase finish before the next phase
// starts; within a phase hooks run in reverse registration order.
type Phase int

const (
	// PhaseIngress stops accepting work: the HTTP server.
	PhaseIngress Phase = iota
	// PhaseFlush lets background jobs write their last state, such as the final backup.
	PhaseFlush
	// PhaseClose releases storage handles once nothing writes to them anymore.
	PhaseClose

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseIngress:
		return "ingress"
	case PhaseFlush:
		return "flush"
	case PhaseClose:
		return "close"
	default:
		return "unknown"
	}
}

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager runs shutdown hooks phase by phase and reacts to OS signals.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	phases [phaseCount][]hook
	done   bool
}

// New creates a lifecycle manager whose whole shutdown is bounded by timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a hook to the given phase. Unknown phases fall back to PhaseClose.
func (m *Manager) Register(phase Phase, name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	if phase < 0 || phase >= phaseCount {
		phase = PhaseClose
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases[phase] = append(m.phases[phase], hook{name: name, fn: fn})
}

// RegisterCloser closes c during PhaseClose.
func (m *Manager) RegisterCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	m.Register(PhaseClose, name, func(context.Context) error {
		return c.Close()
	})
}

// Shutdown runs every phase once. A later call is a no-op. Hook errors are
// joined and do not stop the remaining hooks.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true

	var result error
	for phase := PhaseIngress; phase < phaseCount; phase++ {
		hooks := m.phases[phase]
		for i := len(hooks) - 1; i >= 0; i-- {
			h := hooks[i]
			if err := h.fn(ctx); err != nil {
				m.logger.Error("shutdown hook failed",
					zap.Stringer("phase", phase), zap.String("component", h.name), zap.Error(err))
				result = errors.Join(result, err)
				continue
			}
			m.logger.Info("component stopped", zap.Stringer("phase", phase), zap.String("component", h.name))
		}
	}
	return result
}

// Listen invokes cancel once SIGTERM or SIGINT arrives.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
