package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialgraph/internal/config"
	"socialgraph/internal/httpapi"
	"socialgraph/internal/notifications"
	"socialgraph/internal/service"
	"socialgraph/internal/store/memory"
	"socialgraph/internal/store/postgres"
)

// userStore and postStore are the collaborator stores that have both a postgres and a memory backend.
type userStore interface {
	service.UsersStore
	service.Identity
}

type postStore interface {
	service.PostsStore
	service.PostRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		users  userStore
		posts  postStore
		tokens service.NotificationTokensStore
		dbPing func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if err := postgres.EnsureSchema(context.Background(), pgPool); err != nil {
			logger.Error("db schema failed", "err", err)
			os.Exit(1)
		}

		users = postgres.NewUsersStore(pgPool)
		posts = postgres.NewPostsStore(pgPool)
		tokens = postgres.NewNotificationTokensStore(pgPool)
		dbPing = pgPool.Ping
	} else {
		logger.Info("APP_DB_DSN not set, using in-memory stores")
		users = memory.NewUsersStore()
		posts = memory.NewPostsStore()
		tokens = memory.NewTokensStore()
	}

	notifySvc := &service.NotificationService{
		Inbox:  memory.NewInboxStore(),
		Tokens: tokens,
		Logger: logger,
	}
	if cfg.PushEnabled() {
		sender, err := notifications.NewFCMSender(context.Background(), cfg.FCMProjectID, cfg.FCMCredentials)
		if err != nil {
			logger.Error("fcm sender init failed", "err", err)
			os.Exit(1)
		}
		notifySvc.Sender = sender
		logger.Info("push notifications enabled")
	}

	requestsSvc := &service.RequestsService{
		Requests:  memory.NewRequestsStore(),
		Users:     users,
		Notifier:  notifySvc,
		Logger:    logger,
		Retention: cfg.RequestRetention,
	}
	friendsSvc := &service.FriendsService{
		Requests:    requestsSvc,
		Friendships: memory.NewFriendshipsStore(),
		Users:       users,
		Logger:      logger,
	}
	groupsSvc := &service.GroupsService{Groups: memory.NewGroupsStore(), Users: users, Logger: logger}
	messagesSvc := &service.MessagesService{
		Messages: memory.NewDirectMessagesStore(),
		Friends:  friendsSvc,
		Users:    users,
		Notifier: notifySvc,
		Logger:   logger,
	}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:        logger,
		IsProd:        cfg.IsProd(),
		DBPing:        dbPing,
		CORSOrigins:   cfg.CORSOrigins,
		Directory:     &service.DirectoryService{Users: users, Posts: posts},
		Requests:      requestsSvc,
		Friends:       friendsSvc,
		Groups:        groupsSvc,
		Events:        &service.EventsService{Events: memory.NewEventsStore(), Users: users, Logger: logger},
		Feed:          &service.FeedService{Friends: friendsSvc, Posts: posts, Users: users},
		GroupChat:     &service.GroupChatService{Store: memory.NewGroupMessagesStore(), Groups: groupsSvc, Logger: logger},
		Messages:      messagesSvc,
		Notifications: notifySvc,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go purgeLoop(purgeCtx, logger, requestsSvc, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// purgeLoop drops expired rejected requests on every tick until ctx is done.
func purgeLoop(ctx context.Context, logger *slog.Logger, requests *service.RequestsService, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := requests.PurgeRejected(ctx)
			if err != nil {
				logger.Warn("purge rejected requests failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("purged rejected requests", "count", n)
			}
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
