package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig carries the attributes of the emitted cookie.
type CookieConfig struct {
	Path     string        `yaml:"path" env:"PATH"`
	Domain   string        `yaml:"domain" env:"DOMAIN"`
	Secure   bool          `yaml:"secure" env:"SECURE"`
	HTTPOnly bool          `yaml:"http_only" env:"HTTP_ONLY"`
	SameSite string        `yaml:"same_site" env:"SAME_SITE"`
	MaxAge   time.Duration `yaml:"max_age" env:"MAX_AGE"`
}

// DefaultCookieConfig returns HttpOnly, SameSite=Lax cookies scoped to "/".
// A zero MaxAge makes NewCookie fall back to the caller-provided lifetime.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		HTTPOnly: true,
		SameSite: "lax",
	}
}

// SameSiteMode maps the configured string to net/http's enum. Unknown values
// are treated as lax.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(c.SameSite)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// NewCookie builds the "tokens" cookie for value. fallbackMaxAge is used when
// the config does not pin a max age, normally the refresh credential TTL.
func NewCookie(cfg CookieConfig, value string, fallbackMaxAge time.Duration) *http.Cookie {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = fallbackMaxAge
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
		SameSite: cfg.SameSiteMode(),
	}
}

// ClearCookie returns a cookie that instructs the client to drop "tokens".
func ClearCookie(cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
		SameSite: cfg.SameSiteMode(),
	}
}
