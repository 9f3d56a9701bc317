package cookieauth

import (
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/cookieauth/internal/audit"
	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/password"
)

// Builder assembles an Engine. A Builder can be used once.
type Builder struct {
	config    Config
	directory UserDirectory
	hasher    PasswordHasher
	logger    *slog.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithDirectory sets the user directory. It is required.
func (b *Builder) WithDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithPasswordHasher overrides the Argon2id hasher built from Config.Password.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink. A non-nil sink enables auditing
// regardless of Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithClock overrides the clock used for issuing and verifying credentials.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}
	if b.auditSink != nil {
		cfg.Audit.Enabled = true
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		ph, err := password.NewArgon2(cfg.Password)
		if err != nil {
			return nil, err
		}
		hasher = ph
	}

	engine := &Engine{
		config:     cfg,
		jwtManager: jm,
		hasher:     hasher,
		directory:  b.directory,
		logger:     logger.With("component", "cookieauth"),
		metrics:    NewMetrics(cfg.Metrics),
		now:        now,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.flows = engine.buildFlows()

	b.built = true

	return engine, nil
}
