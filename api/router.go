package api

import (
	"log/slog"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/SivaTeja36/Bus-reservation/internal/service/auth"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Auth      auth.AuthUseCase
	Resources resources.ResourceUseCase
	Sessions  SessionReader
	Notices   notify.Queue
	Logger    *slog.Logger

	CookieName         string
	SecureCookies      bool
	CORSAllowedOrigins []string
}

// NewRouter wires the console: public login routes, the session-gated
// pages and the JSON surface under /api.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notices := cfg.Notices
	if notices == nil {
		notices = notify.NewMemoryQueue()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.SetHTMLTemplate(Templates())
	router.Use(Sessions(cfg.Sessions, cfg.CookieName, cfg.SecureCookies, logger))

	public := router.Group("/")
	NewAuthHandler(cfg.Auth, notices, logger).Register(public)

	pages := router.Group("/", RequireSession())
	NewResourceHandler(cfg.Resources, notices, logger).Register(pages)

	jsonAPI := router.Group("/api", RequireSession())
	NewJSONHandler(cfg.Resources).Register(jsonAPI)

	return router
}
