package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// BackendHealth reports the health of a single named backend.
type BackendHealth interface {
	BackendOnline(name string) bool
}

// SnapshotSource is the store being backed up.
type SnapshotSource interface {
	Snapshot() []domain.Entity
}

// BackupConfig controls how frequently the store is copied. Target names the
// backend as the monitor probes it.
type BackupConfig struct {
	Interval time.Duration
	Target   string
}

// BackupReport describes the most recent backup attempt.
type BackupReport struct {
	At       time.Time `json:"at"`
	Entities int       `json:"entities"`
	Error    string    `json:"error,omitempty"`
}

// BackupProcessor periodically writes the store snapshot to a secondary repository.
type BackupProcessor struct {
	source SnapshotSource
	target repository.SnapshotRepository
	health BackendHealth
	logger *zap.Logger
	cron   *cron.Cron
	cfg    BackupConfig

	mu   sync.Mutex
	last BackupReport
}

func NewBackupProcessor(
	source SnapshotSource,
	target repository.SnapshotRepository,
	health BackendHealth,
	logger *zap.Logger,
	cfg BackupConfig,
) (*BackupProcessor, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BackupProcessor{
		source: source,
		target: target,
		health: health,
		logger: logger.With(zap.String("backup_target", cfg.Target)),
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := "@every " + cfg.Interval.String()
	if _, err := bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.RunOnce(ctx); err != nil {
			bp.logger.Error("backup failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return bp, nil
}

// Start launches the cron scheduler.
func (bp *BackupProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("backup processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running backup or for ctx, whichever ends first.
func (bp *BackupProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("backup processor stopped")
}

// RunOnce copies the current snapshot to the target. It is skipped while the
// target itself is reported offline; the health of the primary does not matter.
func (bp *BackupProcessor) RunOnce(ctx context.Context) error {
	if bp == nil || bp.source == nil || bp.target == nil {
		return nil
	}
	if bp.health != nil && !bp.health.BackendOnline(bp.cfg.Target) {
		bp.logger.Debug("skipping backup (target offline)")
		return nil
	}

	entities := bp.source.Snapshot()
	report := BackupReport{At: time.Now(), Entities: len(entities)}

	err := bp.target.Save(ctx, entities)
	if err != nil {
		report.Error = err.Error()
	} else {
		bp.logger.Debug("backup written", zap.Int("entities", len(entities)))
	}

	bp.mu.Lock()
	bp.last = report
	bp.mu.Unlock()
	return err
}

// LastReport returns the outcome of the latest attempt.
func (bp *BackupProcessor) LastReport() BackupReport {
	if bp == nil {
		return BackupReport{}
	}
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.last
}
