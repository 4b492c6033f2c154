package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/example/petwords/internal/bot"
	"github.com/example/petwords/internal/clock"
	"github.com/example/petwords/internal/config"
	"github.com/example/petwords/internal/database"
	"github.com/example/petwords/internal/learning"
	"github.com/example/petwords/internal/logger"
	"github.com/example/petwords/internal/scheduler"
	"github.com/example/petwords/internal/store"
	"github.com/example/petwords/internal/vocabulary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk, err := clock.NewSystem(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone", "timezone", cfg.Timezone, "error", err)
	}

	// Local tier, always available
	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		log.Fatal("Failed to open local database", "error", err)
	}
	defer localDB.Close()
	local := database.NewSnapshotRepository(localDB)

	remote, closeRemote := openRemote(ctx, cfg, log)
	defer closeRemote()

	var vocab learning.Vocabulary
	catalog, err := loadVocabulary(cfg, log)
	if err != nil {
		log.Warn("Vocabulary not loaded, outcomes will not be validated", "path", cfg.VocabularyPath, "error", err)
	} else {
		vocab = catalog
	}

	svc := learning.NewService(local, remote, vocab, clk, cfg.RemoteTimeout, log)

	if !cfg.RemindersEnabled() {
		log.Info("Reminders disabled, set TELEGRAM_BOT_TOKEN and REMINDER_CHATS to enable")
		<-ctx.Done()
		log.Info("Stopped")
		return
	}

	notifier, err := bot.NewNotifier(cfg.TelegramToken, cfg.ReminderChats, log)
	if err != nil {
		log.Fatal("Failed to create notifier", "error", err)
	}
	accounts := notifier.Accounts()
	sort.Strings(accounts)

	// Prefer the authoritative tier for the list of accounts with data
	var directory scheduler.Directory = local
	if d, ok := remote.(scheduler.Directory); ok {
		directory = d
	}

	sched := scheduler.New(svc, notifier, scheduler.Config{
		Accounts:  accounts,
		Directory: directory,
		StartHour: cfg.NotificationStartHour,
		EndHour:   cfg.NotificationEndHour,
		Location:  clk.Location,
	}, log)
	if err := sched.Start(); err != nil {
		log.Fatal("Failed to start scheduler", "error", err)
	}
	log.Info("Reminder scheduler started", "accounts", len(accounts),
		"start", cfg.NotificationStartHour, "end", cfg.NotificationEndHour)

	<-ctx.Done()
	log.Info("Shutting down")
	sched.Stop()
	log.Info("Stopped")
}

// openRemote opens the authoritative tier. A remote that cannot be reached at
// startup is not fatal: the store retries it on every load and save.
func openRemote(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Persistence, func()) {
	noop := func() {}
	switch cfg.RemoteBackend {
	case config.BackendPostgres:
		db, err := database.OpenRemote(cfg.DatabaseURL)
		if err != nil {
			log.Warn("Remote database unavailable, running on local data only", "error", err)
			return nil, noop
		}
		log.Info("Connected to remote database", "backend", cfg.RemoteBackend)
		return database.NewSnapshotRepository(db), func() { db.Close() }
	case config.BackendRedis:
		rdb, err := database.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("Redis unavailable, running on local data only", "error", err)
			return nil, noop
		}
		log.Info("Connected to remote database", "backend", cfg.RemoteBackend, "addr", cfg.RedisAddr)
		return database.NewRedisSnapshotRepository(rdb, cfg.RedisPrefix), func() { rdb.Close() }
	}
	return nil, noop
}

func loadVocabulary(cfg *config.Config, log *logger.Logger) (*vocabulary.Catalog, error) {
	if _, err := os.Stat(cfg.VocabularyPath); errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	importCfg := vocabulary.DefaultImportConfig()
	importCfg.FilePath = cfg.VocabularyPath
	importCfg.SheetName = cfg.VocabularySheet
	catalog, result, err := vocabulary.Import(importCfg)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		log.Debug("Vocabulary row skipped", "detail", e)
	}
	log.Info("Vocabulary loaded", "topics", len(catalog.Topics()), "words", result.Imported, "skipped", result.Skipped)
	return catalog, nil
}
