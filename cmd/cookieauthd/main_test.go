package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/password"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "cookieauthd version "+Version)
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("correct horse\n"))
	cmd.SetArgs([]string{"hash-password"})

	require.NoError(t, cmd.Execute())
	digest := strings.TrimSpace(out.String())
	require.True(t, strings.HasPrefix(digest, "$argon2id$"), digest)

	hasher, err := password.NewArgon2(cookieauth.DefaultConfig().Password)
	require.NoError(t, err)
	ok, err := hasher.Verify("correct horse", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashPasswordRejectsEmptyInput(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"hash-password"})

	require.Error(t, cmd.Execute())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, "loud", "text")
	require.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	require.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	for _, kind := range []string{backendMemory, backendMiniredis} {
		t.Run(kind, func(t *testing.T) {
			be, err := openBackend(ctx, backendOptions{Kind: kind}, logger)
			require.NoError(t, err)
			defer be.Close()

			u, err := be.Directory.Create(ctx, cookieauth.CreateUserInput{Email: "a@b.c", PasswordHash: "d"})
			require.NoError(t, err)
			got, err := be.Directory.FindByEmail(ctx, "a@b.c")
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
			if be.Health != nil {
				assert.NoError(t, be.Health(ctx))
			}
		})
	}

	_, err := openBackend(ctx, backendOptions{Kind: "cassandra"}, logger)
	require.Error(t, err)
	_, err = openBackend(ctx, backendOptions{Kind: backendRedis}, logger)
	require.Error(t, err)
	_, err = openBackend(ctx, backendOptions{Kind: backendPostgres}, logger)
	require.Error(t, err)
}
