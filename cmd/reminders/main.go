package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"volunteer_feedback_reminders/internal/app"
	"volunteer_feedback_reminders/internal/domain/hours"
	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	domainTelegram "volunteer_feedback_reminders/internal/domain/telegram"
	"volunteer_feedback_reminders/internal/domain/volunteer"
	"volunteer_feedback_reminders/internal/infra/cache"
	"volunteer_feedback_reminders/internal/infra/config"
	idb "volunteer_feedback_reminders/internal/infra/database"
	"volunteer_feedback_reminders/internal/infra/firestoredb"
	"volunteer_feedback_reminders/internal/infra/logger"
	"volunteer_feedback_reminders/internal/infra/mongodb"
	"volunteer_feedback_reminders/internal/infra/scheduler"
	"volunteer_feedback_reminders/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const sweepTimeout = 10 * time.Minute

// stores groups the repositories of one backend.
type stores struct {
	users         volunteer.Repository
	notifications notification.Repository
	tracking      reminder.Repository
	hours         hours.Repository
	watcher       hours.Watcher // nil when the backend cannot push approvals
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"store_backend": cfg.StoreBackend,
		"environment":   cfg.Environment,
		"admin_id":      cfg.AdminTelegramID,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open document store")
	}
	defer st.close()
	mainLogger.Info("Repositories initialized")

	var guard app.CallGuard
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer redisClient.Close()
		guard = cache.NewRedisGuard(redisClient, cfg.CheckTimeout*2, cfg.DedupTTL, logger.Component("guard"))
		mainLogger.Info("Using Redis call guard")
	} else {
		guard = app.NewDedupGuard(cfg.DedupTTL)
		mainLogger.Info("Using in-process call guard")
	}

	reminderService := app.NewReminderService(
		st.users, st.notifications, st.tracking, guard,
		logger.Component("reminder_service"), cfg.CheckTimeout,
	)

	var bot *telebot.Bot
	var alerts domainTelegram.Client
	if cfg.TelegramToken != "" {
		bot, err = newBot(cfg.TelegramToken)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		alerts = telegram.NewTelebotAdapter(bot)
	}

	sweepService := app.NewSweepService(st.hours, reminderService, alerts, cfg.AdminTelegramID, logger.Component("sweep"))

	reminderScheduler := scheduler.NewReminderScheduler(
		sweepService,
		guard,
		logger.Log.WithField("service", "reminders"),
		cfg.CronSpecSweep,
		cfg.CronSpecGuardPrune,
		sweepTimeout,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	if cfg.WatchApprovals {
		if st.watcher == nil {
			mainLogger.WithError(hours.ErrWatchUnsupported).Warn("Approvals will only be picked up by the periodic sweep")
		} else {
			go func() {
				if err := st.watcher.Watch(ctx, sweepService.HandleApproval); err != nil && !errors.Is(err, context.Canceled) {
					mainLogger.WithError(err).Error("Approval watcher stopped")
				}
			}()
			mainLogger.Info("Approval watcher started")
		}
	}

	if bot != nil {
		adminService := app.NewAdminService(reminderService, st.hours, cfg.AdminTelegramID)
		handlerLogger := logger.Component("telegram")
		telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, handlerLogger)
		mainLogger.Info("Telegram handlers registered")

		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	}

	mainLogger.Info("Application setup complete")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	reminderScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	mainLogger.Info("Application shut down gracefully")
}

func openStores(ctx context.Context, cfg *config.AppConfig) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := idb.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users:         idb.NewPostgresUserRepository(db),
			notifications: idb.NewPostgresNotificationRepository(db),
			tracking:      idb.NewPostgresTrackingRepository(db),
			hours:         idb.NewPostgresHoursRepository(db),
			watcher:       idb.NewApprovalListener(cfg.DatabaseURL, logger.Component("database")),
			close:         func() { db.Close() },
		}, nil

	case config.BackendMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:         mongodb.NewUserRepository(db),
			notifications: mongodb.NewNotificationRepository(db),
			tracking:      mongodb.NewTrackingRepository(db),
			hours:         mongodb.NewHoursRepository(db),
			close:         func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		client, err := firestoredb.NewClient(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		hoursRepo := firestoredb.NewHoursRepository(client, logger.Component("firestore"))
		return &stores{
			users:         firestoredb.NewUserRepository(client),
			notifications: firestoredb.NewNotificationRepository(client),
			tracking:      firestoredb.NewTrackingRepository(client),
			hours:         hoursRepo,
			watcher:       hoursRepo,
			close:         func() { client.Close() },
		}, nil
	}
}

func newBot(token string) (*telebot.Bot, error) {
	botLogger := logger.Component("telebot")
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"text": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	return telebot.NewBot(pref)
}
