package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/httpapi"
	promexport "github.com/MrEthical07/cookieauth/metrics/export/prometheus"
)

type serveOptions struct {
	ConfigPath      string
	EnvFiles        []string
	Addr            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	Backend         backendOptions
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the auth HTTP API",
		Long: `Serve login, register and cookie session endpoints.

Configuration is layered: defaults, then the YAML file given by --config,
then .env files, then COOKIEAUTH_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Config file path (YAML)")
	f.StringSliceVar(&opts.EnvFiles, "env-file", nil, "Dotenv files to load (default .env)")
	f.StringVar(&opts.Addr, "addr", ":8080", "HTTP listen address")
	f.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&opts.LogFormat, "log-format", "text", "Log format (text, json)")
	f.DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	f.StringVar(&opts.Backend.Kind, "backend", backendMemory, "User directory backend (memory, miniredis, redis, postgres)")
	f.StringVar(&opts.Backend.RedisAddr, "redis-addr", "", "Redis address for the redis backend")
	f.StringVar(&opts.Backend.RedisPrefix, "redis-prefix", "", "Redis key prefix")
	f.StringVar(&opts.Backend.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres DSN for the postgres backend")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	logger, err := newLogger(os.Stderr, opts.LogLevel, opts.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := cookieauth.LoadConfig(opts.ConfigPath, cookieauth.LoadOptions{DotEnvFiles: opts.EnvFiles})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Debug("configuration loaded", "config", cfg.Redacted())

	be, err := openBackend(ctx, opts.Backend, logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer be.Close()

	builder := cookieauth.New().
		WithConfig(cfg).
		WithDirectory(be.Directory).
		WithLogger(logger)
	if cfg.Audit.Enabled {
		builder.WithAuditSink(cookieauth.NewSlogSink(logger.With("component", "audit"), slog.LevelInfo))
	}
	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Options{
		Engine:  engine,
		Logger:  logger,
		Metrics: promexport.Handler(promexport.NewCollector(engine)),
		Health:  be.Health,
	})

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("cookieauthd listening", "addr", opts.Addr, "backend", opts.Backend.Kind, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
