package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/app"
	"github.com/Spok95/mycsd-points/internal/bot/handlers"
	"github.com/Spok95/mycsd-points/internal/config"
	"github.com/Spok95/mycsd-points/internal/ctxutil"
	"github.com/Spok95/mycsd-points/internal/db"
	"github.com/Spok95/mycsd-points/internal/jobs"
	"github.com/Spok95/mycsd-points/internal/logging"
	"github.com/Spok95/mycsd-points/internal/memstore"
	"github.com/Spok95/mycsd-points/internal/mycsd"
	"github.com/Spok95/mycsd-points/internal/observability"
)

var version = "dev"

// backend — то, что умеют оба хранилища.
type backend interface {
	mycsd.Store
	handlers.Users
	jobs.Outbox
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env, version)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctxutil.SetDBTimeout(cfg.DBTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store    backend
		database *sql.DB
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		store = memstore.New()
	default:
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer func() { _ = database.Close() }()
		if err := db.Migrate(ctx, database); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		store = db.New(database, 0)
	}

	svc := mycsd.NewService(store, logger.Named("mycsd"), mycsd.WithLocation(cfg.Location))

	// nil-интерфейс, а не (*sql.DB)(nil): без БД /healthz отвечает ok
	var pinger app.Pinger
	if database != nil {
		pinger = database
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, pinger, lg.Level, logger)
	logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))

	if cfg.BotToken == "" {
		logger.Warn("BOT_TOKEN is empty, telegram bot disabled")
		<-ctx.Done()
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram init", zap.Error(err))
	}
	bot.Debug = cfg.Env != "prod"
	logger.Info("bot started", zap.String("username", bot.Self.UserName))

	runner := jobs.New(ctx, logger.Named("jobs"))
	notifier := jobs.NewNotificationDispatcher(store, bot, logger.Named("notify"), cfg.NotifyBatch)
	runner.Every(cfg.NotifyInterval, jobs.NotifyJobName, notifier.Run)

	env := &handlers.Env{
		Bot:       bot,
		Svc:       svc,
		Users:     store,
		IsAdminID: cfg.IsAdminChat,
		Log:       logger.Named("bot"),
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	app.NewDispatcher(env).Run(ctx, updates)
	logger.Info("shutting down")
}
