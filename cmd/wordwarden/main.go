package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordwarden/internal/analytics"
	"wordwarden/internal/bot"
	"wordwarden/internal/config"
	"wordwarden/internal/dashboard"
	"wordwarden/internal/moderation"
	"wordwarden/internal/modules/audit"
	"wordwarden/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	auditLogger := audit.NewLogger(store, logger)
	engine := moderation.NewEngine(store, moderation.Defaults{
		Sensitivity:                 moderation.NormalizeSensitivity(cfg.Moderation.Sensitivity),
		ActionType:                  moderation.Action(cfg.Moderation.ActionType),
		EnableScriptTransliteration: cfg.Moderation.ScriptTransliteration,
	}, logger)

	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if persisted, err := store.ListModerationSettings(warmCtx); err != nil {
		logger.Warn("settings warmup failed", zap.Error(err))
	} else {
		for _, settings := range persisted {
			engine.SaveGuildSettings(settings.GuildID, settings)
		}
		logger.Info("guild settings loaded", zap.Int("guilds", len(persisted)))
	}
	warmCancel()

	analyticsService := analytics.New(store)

	botSvc, err := bot.New(cfg, logger, store, engine, auditLogger, analyticsService)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started", zap.String("mode", cfg.Mode))

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()

	var server *dashboard.Server
	var hub *dashboard.Hub
	if cfg.Dashboard.Enabled {
		hub = dashboard.NewHub(logger)
		go hub.Run(hubCtx)
		server = dashboard.NewServer(cfg.Dashboard.Addr, logger, store, engine, analyticsService, hub)
		server.Start()
	}

	auditLogger.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
		botSvc.NotifyAudit(ctx, entry)
		if hub != nil {
			hub.Broadcast(entry)
		}
	})

	if cfg.RetentionDays > 0 {
		go retentionLoop(hubCtx, store, logger, cfg.RetentionDays)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}

func retentionLoop(ctx context.Context, store *storage.Store, logger *zap.Logger, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.CleanupAuditLogs(ctx, retentionDays); err != nil {
				logger.Warn("audit cleanup failed", zap.Error(err))
			}
		}
	}
}
