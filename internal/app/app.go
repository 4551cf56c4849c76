package app

import (
	"context"
	"fmt"

	"github.com/semmidev/ckptsync/internal/adapter/notifier"
	"github.com/semmidev/ckptsync/internal/adapter/storage"
	"github.com/semmidev/ckptsync/internal/config"
	"github.com/semmidev/ckptsync/internal/domain"
	"github.com/semmidev/ckptsync/internal/infrastructure/logger"
	"github.com/semmidev/ckptsync/internal/infrastructure/scheduler"
	"github.com/semmidev/ckptsync/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	store     domain.ObjectStore
	syncUC    domain.Executor
	notifier  domain.Notifier
	scheduler *scheduler.Scheduler
	cycles    int
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(logger.Options{
		Level:      cfg.App.LogLevel,
		File:       cfg.App.LogFile,
		MaxSizeMB:  cfg.App.LogMaxSizeMB,
		MaxBackups: cfg.App.LogMaxBackups,
		MaxAgeDays: cfg.App.LogMaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)
	log.Infof("Local path: %s, prefix: %s", cfg.Uploader.LocalPath, cfg.Uploader.Prefix)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("✓ Storage ready: %s", store.Describe())

	syncUC := usecase.NewSync(store, log.Named("sync"), usecase.SyncOptions{
		LocalPath:             cfg.Uploader.LocalPath,
		Prefix:                cfg.Uploader.Prefix,
		ContinueOnUploadError: cfg.ContinueOnUploadError(),
	})

	a := &App{
		config:   cfg,
		logger:   log,
		store:    store,
		syncUC:   syncUC,
		notifier: initializeNotifier(cfg, log, store.Describe()),
	}

	if cfg.Uploader.Bot {
		a.scheduler = scheduler.New(cfg.BotInterval(), log.Named("scheduler"))
	}

	return a, nil
}

// initializeNotifier returns nil when notifications are disabled or the bot
// cannot be reached; a broken notifier never blocks syncing.
func initializeNotifier(cfg *config.Config, log *logger.Logger, source string) domain.Notifier {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}

	tg, err := notifier.NewTelegram(&cfg.Notify.Telegram, source)
	if err != nil {
		log.Errorf("Failed to initialize Telegram: %v", err)
		return nil
	}
	log.Infof("✓ Telegram notifications enabled")
	return tg
}

// Run performs one cycle, or keeps cycling until ctx is cancelled when bot
// mode is enabled.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler == nil {
		a.logger.Infof("Bot is disabled, running a single cycle")
		return a.runCycle(ctx)
	}

	a.logger.Infof("Bot is enabled, syncing every %s", a.config.BotInterval())
	return a.scheduler.Run(ctx, a.botCycle)
}

func (a *App) runCycle(ctx context.Context) error {
	a.cycles++
	log := a.logger.With("cycle", a.cycles)
	log.Infof("=== Sync cycle %d ===", a.cycles)

	result, err := a.syncUC.Execute(ctx)
	a.notify(ctx, log, result, err)
	if err != nil {
		return fmt.Errorf("sync cycle %d: %w", a.cycles, err)
	}

	log.Infof("Cycle finished in %s: checkpoint %s, %d deleted, %d uploaded",
		result.Duration, result.Checkpoint, result.Deleted, result.Uploaded)
	return nil
}

// botCycle keeps the poll loop alive across failed cycles unless
// stop_on_error is set.
func (a *App) botCycle(ctx context.Context) error {
	err := a.runCycle(ctx)
	if err == nil || ctx.Err() != nil {
		return nil
	}

	if a.config.Uploader.StopOnError {
		return err
	}
	a.logger.Errorf("%v", err)
	return nil
}

func (a *App) notify(ctx context.Context, log *logger.Logger, result *domain.CycleResult, cycleErr error) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, result, cycleErr); err != nil {
		log.Warnf("Notification failed: %v", err)
	}
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.logger.Close()
}
