package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/directory/memory"
	"github.com/MrEthical07/cookieauth/directory/pgdir"
	"github.com/MrEthical07/cookieauth/directory/redisdir"
)

const (
	backendMemory    = "memory"
	backendMiniredis = "miniredis"
	backendRedis     = "redis"
	backendPostgres  = "postgres"
)

type backendOptions struct {
	Kind        string
	RedisAddr   string
	RedisPrefix string
	DatabaseURL string
}

// backend is an opened user directory plus its health check and cleanup.
type backend struct {
	Directory cookieauth.UserDirectory
	Health    func(context.Context) error
	Close     func()
}

func openBackend(ctx context.Context, opts backendOptions, logger *slog.Logger) (*backend, error) {
	switch opts.Kind {
	case "", backendMemory:
		return &backend{
			Directory: memory.New(),
			Close:     func() {},
		}, nil

	case backendMiniredis:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start miniredis: %w", err)
		}
		logger.Warn("using in-process miniredis; users are lost on exit", "addr", mr.Addr())
		return redisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), opts.RedisPrefix, mr.Close), nil

	case backendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("--redis-addr is required for the redis backend")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisBackend(client, opts.RedisPrefix, func() {}), nil

	case backendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("--database-url is required for the postgres backend")
		}
		dir, err := pgdir.Open(ctx, opts.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			Directory: dir,
			Health:    dir.Ping,
			Close:     dir.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Kind)
	}
}

func redisBackend(client *redis.Client, prefix string, stop func()) *backend {
	dir := redisdir.New(client, prefix)
	return &backend{
		Directory: dir,
		Health: func(ctx context.Context) error {
			_, err := dir.Ping(ctx)
			return err
		},
		Close: func() {
			client.Close()
			stop()
		},
	}
}
