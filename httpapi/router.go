package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MrEthical07/cookieauth"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Options wires a router.
type Options struct {
	Engine *cookieauth.Engine
	Logger *slog.Logger
	// Metrics, when set, is mounted at GET /metrics.
	Metrics http.Handler
	// Health, when set, is called by GET /healthz.
	Health func(context.Context) error
}

// NewRouter returns a gin engine with every auth route registered.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	h := &handler{engine: opts.Engine, logger: logger, health: opts.Health}

	auth := router.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/register", h.register)
	auth.POST("/logout", h.logout)
	auth.GET("/session", RequireSession(opts.Engine), h.session)
	auth.GET("/me", RequireSession(opts.Engine), h.me)
	auth.PATCH("/me", RequireSession(opts.Engine), h.updateMe)

	router.GET("/healthz", h.healthz)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(RequestIDHeader),
		)
	}
}
