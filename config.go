package cookieauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/password"
	"github.com/MrEthical07/cookieauth/session"
)

const minSecretLength = 32

// Config is the complete engine configuration. It is read once at startup.
type Config struct {
	JWT       JWTConfig            `yaml:"jwt" envPrefix:"JWT_"`
	Cookie    session.CookieConfig `yaml:"cookie" envPrefix:"COOKIE_"`
	Password  password.Config      `yaml:"password" envPrefix:"PASSWORD_"`
	Directory DirectoryConfig      `yaml:"directory" envPrefix:"DIRECTORY_"`
	Audit     AuditConfig          `yaml:"audit" envPrefix:"AUDIT_"`
	Metrics   MetricsConfig        `yaml:"metrics" envPrefix:"METRICS_"`
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds the credential secrets and lifetimes.
type JWTConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"ACCESS_SECRET"`
	RefreshSecret string        `yaml:"refresh_secret" env:"REFRESH_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"ACCESS_TTL"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL"`
	Issuer        string        `yaml:"issuer" env:"ISSUER"`
	Leeway        time.Duration `yaml:"leeway" env:"LEEWAY"`
}

// DirectoryConfig bounds calls into the UserDirectory. A zero Timeout means
// only the caller's context applies.
type DirectoryConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled" env:"ENABLED"`
	BufferSize int  `yaml:"buffer_size" env:"BUFFER_SIZE"`
	DropIfFull bool `yaml:"drop_if_full" env:"DROP_IF_FULL"`
}

// MetricsConfig controls in-process metrics.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled" env:"ENABLED"`
	EnableLatencyHistograms bool `yaml:"latency_histograms" env:"LATENCY_HISTOGRAMS"`
}

// DefaultConfig returns every setting except the two secrets.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  jwt.DefaultAccessTTL,
			RefreshTTL: jwt.DefaultRefreshTTL,
		},
		Cookie:   session.DefaultCookieConfig(),
		Password: password.DefaultConfig(),
		Directory: DirectoryConfig{
			Timeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate checks the configuration before the engine is built.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessSecret == "" {
		return errors.New("JWT AccessSecret is required")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("JWT RefreshSecret is required")
	}
	if len(c.JWT.AccessSecret) < minSecretLength {
		return fmt.Errorf("JWT AccessSecret must be at least %d bytes", minSecretLength)
	}
	if len(c.JWT.RefreshSecret) < minSecretLength {
		return fmt.Errorf("JWT RefreshSecret must be at least %d bytes", minSecretLength)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT AccessSecret and RefreshSecret must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be longer than AccessTTL")
	}
	if c.JWT.AccessTTL > 24*time.Hour {
		return errors.New("JWT AccessTTL must be <= 24h")
	}
	if c.JWT.RefreshTTL > 90*24*time.Hour {
		return errors.New("JWT RefreshTTL must be <= 90 days")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Cookie
	switch strings.ToLower(strings.TrimSpace(c.Cookie.SameSite)) {
	case "", "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			return errors.New("Cookie SameSite=none requires Secure")
		}
	default:
		return errors.New("Cookie SameSite must be lax, strict or none")
	}
	if c.Cookie.MaxAge < 0 {
		return errors.New("Cookie MaxAge must be >= 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Directory
	if c.Directory.Timeout < 0 {
		return errors.New("Directory Timeout must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.JWT.AccessSecret != "" {
		c.JWT.AccessSecret = "[redacted]"
	}
	if c.JWT.RefreshSecret != "" {
		c.JWT.RefreshSecret = "[redacted]"
	}
	return c
}
