package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/m3rciful/fundbot/core/config"
	"github.com/m3rciful/fundbot/core/buildinfo"
	"github.com/m3rciful/fundbot/core/database"
	"github.com/m3rciful/fundbot/core/logger"
	"github.com/m3rciful/fundbot/core/telegram"
	"github.com/m3rciful/fundbot/fund/app"
	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/session"
	"github.com/m3rciful/fundbot/fund/store"
	"log/slog"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := coreconfig.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		_ = logger.InitLogger(nil)
		logger.L.Error("config load failed",
			slog.String("event", "startup.config"),
			slog.String("err", err.Error()),
		)
		return 1
	}

	if err := logger.InitLogger(cfg); err != nil {
		return 1
	}
	defer logger.Shutdown()

	logger.L.Info("starting",
		slog.String("event", "startup"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := buildStore(cfg)
	if err != nil {
		logger.L.Error("store init failed",
			slog.String("event", "startup.store"),
			slog.String("driver", cfg.Storage.Driver),
			slog.String("err", err.Error()),
		)
		return 1
	}
	defer cleanup()

	led := ledger.New(st)
	if err := led.Load(ctx); err != nil {
		logger.L.Error("ledger load failed",
			slog.String("event", "startup.ledger"),
			slog.String("err", err.Error()),
		)
		return 1
	}

	engine := session.NewEngine(led)

	bot := app.New(app.Deps{
		Cfg:    cfg,
		Ledger: led,
		Engine: engine,
	})

	if err := telegram.RunTelegram(ctx, bot.BuildRunOptions()); err != nil {
		logger.L.Error("bot stopped with error",
			slog.String("event", "shutdown"),
			slog.String("err", err.Error()),
		)
		return 1
	}

	if err := led.Flush(context.Background()); err != nil {
		logger.L.Warn("final flush failed",
			slog.String("event", "shutdown.flush"),
			slog.String("err", err.Error()),
		)
	}

	logger.L.Info("stopped", slog.String("event", "shutdown"))
	return 0
}

func buildStore(cfg *coreconfig.Config) (store.Store, func(), error) {
	switch cfg.Storage.Driver {
	case coreconfig.StoragePostgres:
		if err := database.RunMigrations(cfg.Database); err != nil {
			return nil, nil, err
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPgStore(db), func() { db.Close() }, nil
	default:
		return store.NewFileStore(cfg.Storage.SnapshotPath), func() {}, nil
	}
}
