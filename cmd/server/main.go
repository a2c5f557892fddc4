package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/internal/router"
	"github.com/fastygo/tracker/internal/services"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/logger"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lc := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	lc.Listen(cancel)

	primary, err := openBackend(appCtx, cfg.Storage.Backend, cfg, lc, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage backend failed", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	var store *tracker.Manager
	if primary == nil {
		store = tracker.New(zapLogger)
	} else {
		loadCtx, loadCancel := context.WithTimeout(appCtx, cfg.Context.RequestTimeout)
		store, err = tracker.Load(loadCtx, primary, zapLogger)
		loadCancel()
		if err != nil {
			zapLogger.Fatal("failed to load snapshot", zap.Error(err))
		}
	}

	probes := probeFor(cfg.Storage.Backend, primary)

	var backupTarget repository.SnapshotRepository
	if cfg.Backup.Enabled {
		backupTarget, err = openBackend(appCtx, cfg.Backup.Backend, cfg, lc, zapLogger)
		if err != nil {
			zapLogger.Fatal("backup backend failed", zap.String("backend", cfg.Backup.Backend), zap.Error(err))
		}
		probes = append(probes, probeFor(cfg.Backup.Backend, backupTarget)...)
	}

	mon := monitor.New(probes, store, 10*time.Second, zapLogger)
	mon.Start()
	lc.Register(lifecycle.PhaseFlush, "monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if backupTarget != nil {
		backupProcessor, err := services.NewBackupProcessor(store, backupTarget, mon, zapLogger, services.BackupConfig{
			Interval: cfg.Backup.Interval,
			Target:   cfg.Backup.Backend,
		})
		if err != nil {
			zapLogger.Fatal("failed to schedule backups", zap.Error(err))
		}
		backupProcessor.Start()
		lc.Register(lifecycle.PhaseFlush, "backup_processor", func(ctx context.Context) error {
			backupProcessor.Stop(ctx)
			return backupProcessor.RunOnce(ctx)
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:    apiHandler.NewTaskHandler(store, ctxAdapter, zapLogger),
		Epic:    apiHandler.NewEpicHandler(store, ctxAdapter, zapLogger),
		Subtask: apiHandler.NewSubtaskHandler(store, ctxAdapter, zapLogger),
		History: apiHandler.NewHistoryHandler(store, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, middleware.Recover(zapLogger), middleware.AccessLog(zapLogger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	lc.Register(lifecycle.PhaseIngress, "http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := lc.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
