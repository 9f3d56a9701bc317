package cookieauth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = "access-secret-0123456789abcdef0123"
	cfg.JWT.RefreshSecret = "refresh-secret-0123456789abcdef012"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults with secrets", mutate: func(*Config) {}, wantValid: true},
		{
			name:      "missing access secret",
			mutate:    func(c *Config) { c.JWT.AccessSecret = "" },
			wantValid: false,
		},
		{
			name:      "short refresh secret",
			mutate:    func(c *Config) { c.JWT.RefreshSecret = "short" },
			wantValid: false,
		},
		{
			name:      "shared secret",
			mutate:    func(c *Config) { c.JWT.RefreshSecret = c.JWT.AccessSecret },
			wantValid: false,
		},
		{
			name: "refresh not longer than access",
			mutate: func(c *Config) {
				c.JWT.AccessTTL = time.Hour
				c.JWT.RefreshTTL = time.Hour
			},
			wantValid: false,
		},
		{
			name:      "jwt leeway valid",
			mutate:    func(c *Config) { c.JWT.Leeway = 45 * time.Second },
			wantValid: true,
		},
		{
			name:      "jwt leeway invalid",
			mutate:    func(c *Config) { c.JWT.Leeway = 3 * time.Minute },
			wantValid: false,
		},
		{
			name:      "samesite none without secure",
			mutate:    func(c *Config) { c.Cookie.SameSite = "none" },
			wantValid: false,
		},
		{
			name: "samesite none with secure",
			mutate: func(c *Config) {
				c.Cookie.SameSite = "None"
				c.Cookie.Secure = true
			},
			wantValid: true,
		},
		{
			name:      "samesite unknown",
			mutate:    func(c *Config) { c.Cookie.SameSite = "sometimes" },
			wantValid: false,
		},
		{
			name:      "weak argon2 memory",
			mutate:    func(c *Config) { c.Password.Memory = 1024 },
			wantValid: false,
		},
		{
			name:      "negative directory timeout",
			mutate:    func(c *Config) { c.Directory.Timeout = -time.Second },
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultConfigHasNoSecrets(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.JWT.AccessSecret)
	assert.Empty(t, cfg.JWT.RefreshSecret)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Error(t, cfg.Validate())
}

func TestConfigRedacted(t *testing.T) {
	cfg := validConfig()
	red := cfg.Redacted()
	assert.Equal(t, "[redacted]", red.JWT.AccessSecret)
	assert.Equal(t, "[redacted]", red.JWT.RefreshSecret)
	assert.NotEqual(t, "[redacted]", cfg.JWT.AccessSecret)
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookieauth.yaml")
	yamlDoc := `
jwt:
  access_secret: yaml-access-secret-0123456789abcdef
  refresh_secret: yaml-refresh-secret-0123456789abcde
  access_ttl: 5m
cookie:
  secure: true
  same_site: strict
directory:
  timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	cfg, err := LoadConfig(path, LoadOptions{Environment: map[string]string{
		"COOKIEAUTH_JWT_REFRESH_SECRET": "env-refresh-secret-0123456789abcdef",
		"COOKIEAUTH_AUDIT_ENABLED":      "true",
	}})
	require.NoError(t, err)

	assert.Equal(t, "yaml-access-secret-0123456789abcdef", cfg.JWT.AccessSecret)
	assert.Equal(t, "env-refresh-secret-0123456789abcdef", cfg.JWT.RefreshSecret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, "strict", cfg.Cookie.SameSite)
	assert.Equal(t, 2*time.Second, cfg.Directory.Timeout)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 1024, cfg.Audit.BufferSize)
}

func TestLoadConfigEnvironmentOnly(t *testing.T) {
	cfg, err := LoadConfig("", LoadOptions{Environment: map[string]string{
		"COOKIEAUTH_JWT_ACCESS_SECRET":  "env-access-secret-0123456789abcdef",
		"COOKIEAUTH_JWT_REFRESH_SECRET": "env-refresh-secret-0123456789abcdef",
		"COOKIEAUTH_JWT_ACCESS_TTL":     "90s",
	}})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.JWT.AccessTTL)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig("", LoadOptions{Environment: map[string]string{}})
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), LoadOptions{Environment: map[string]string{}})
	require.Error(t, err)
}

func TestLoadConfigDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "COOKIEAUTH_JWT_ACCESS_SECRET=dotenv-access-secret-0123456789abcd\n" +
		"COOKIEAUTH_JWT_REFRESH_SECRET=dotenv-refresh-secret-0123456789abc\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("COOKIEAUTH_JWT_ACCESS_SECRET", "")
	t.Setenv("COOKIEAUTH_JWT_REFRESH_SECRET", "")
	os.Unsetenv("COOKIEAUTH_JWT_ACCESS_SECRET")
	os.Unsetenv("COOKIEAUTH_JWT_REFRESH_SECRET")

	cfg, err := LoadConfig("", LoadOptions{DotEnvFiles: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-access-secret-0123456789abcd", cfg.JWT.AccessSecret)
}
