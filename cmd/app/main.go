package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SivaTeja36/Bus-reservation/api"
	"github.com/SivaTeja36/Bus-reservation/config"
	"github.com/SivaTeja36/Bus-reservation/internal/apiclient"
	"github.com/SivaTeja36/Bus-reservation/internal/bootstrap"
	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/kafka"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/SivaTeja36/Bus-reservation/internal/service/auth"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notices must live wherever sessions do, or a redirect answered by
	// another replica loses them.
	var (
		store   session.Store
		notices notify.Queue
	)
	switch cfg.Session.Store {
	case "redis":
		rdb := session.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		store = session.NewRedisStoreWithClient(rdb, cfg.Session.TTL())
		notices = notify.NewRedisQueue(rdb, notify.DefaultTTL)
	default:
		store = session.NewMemoryStore()
		notices = notify.NewMemoryQueue()
	}
	sessions := session.NewManager(store, logger)

	client := apiclient.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), sessions)
	listCache := cache.New(cache.WithStaleAfter(cfg.Cache.StaleAfter()))

	sessions.OnLogout(func(ctx context.Context, id string) {
		listCache.InvalidatePrefix(cache.Key(id, ""))
		if err := notices.Forget(ctx, id); err != nil {
			logger.Warn("forget notices", "error", err)
		}
	})

	resourceOpts := []resources.ResourceServiceOption{resources.WithLogger(logger)}
	authOpts := []auth.AuthServiceOption{auth.WithLogger(logger)}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unavailable, console events will be dropped", "error", err)
		}
		resourceOpts = append(resourceOpts, resources.WithEvents(producer, cfg.Kafka.EventsTopic))
		authOpts = append(authOpts, auth.WithEvents(producer, cfg.Kafka.EventsTopic))
	}

	router := api.NewRouter(api.RouterConfig{
		Auth:               auth.NewAuthService(client, sessions, authOpts...),
		Resources:          resources.NewResourceService(client, listCache, resourceOpts...),
		Sessions:           sessions,
		Notices:            notices,
		Logger:             logger,
		CookieName:         cfg.Session.CookieName,
		SecureCookies:      cfg.HTTP.SecureCookies,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
	})

	logger.Info("starting console", "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
