package cookieauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	internalaudit "github.com/MrEthical07/cookieauth/internal/audit"
	"github.com/MrEthical07/cookieauth/internal/flows"
	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/password"
	"github.com/MrEthical07/cookieauth/session"
)

// Engine runs login, registration and cookie session resolution.
//
// Engine is immutable after Builder.Build and safe for concurrent use.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	hasher     PasswordHasher
	directory  UserDirectory
	logger     *slog.Logger
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	flows      flows.Service
	now        func() time.Time
}

// Close stops the audit dispatcher after draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Cookie builds the "tokens" cookie for a packed value using Config.Cookie.
func (e *Engine) Cookie(value string) *http.Cookie {
	return session.NewCookie(e.config.Cookie, value, e.config.JWT.RefreshTTL)
}

// ClearCookie builds a cookie that removes "tokens" from the client.
func (e *Engine) ClearCookie() *http.Cookie {
	return session.ClearCookie(e.config.Cookie)
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// directoryContext bounds a directory call by Config.Directory.Timeout.
func (e *Engine) directoryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Directory.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.config.Directory.Timeout)
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Warn(msg, args...)
}

func (e *Engine) debug(msg string, args ...any) {
	e.logger.Debug(msg, args...)
}

func (e *Engine) buildFlows() flows.Service {
	var needsUpgrade func(string) (bool, error)
	if u, ok := e.hasher.(PasswordUpgrader); ok {
		needsUpgrade = u.NeedsUpgrade
	}

	return flows.New(flows.Deps{
		Login: flows.LoginDeps{
			Validate: func(in flows.LoginInput) error {
				return ValidateLogin(LoginRequest{Email: in.Email, Password: in.Password})
			},
			FindByEmail:          e.findByEmail,
			UserNotFound:         ErrUserNotFound,
			VerifyPassword:       e.hasher.Verify,
			PasswordTooLong:      password.ErrPasswordTooLong,
			IssuePair:            e.issuePair,
			PasswordNeedsUpgrade: needsUpgrade,
			HashPassword:         e.hasher.Hash,
			UpdatePasswordHash:   e.updatePasswordHash,
			Warn:                 e.warn,
			Debug:                e.debug,
		},
		Register: flows.RegisterDeps{
			Validate: func(in flows.RegisterInput) error {
				return ValidateRegister(RegisterRequest{
					Email:           in.Email,
					Password:        in.Password,
					ConfirmPassword: in.ConfirmPassword,
				})
			},
			HashPassword: e.hasher.Hash,
			CreateUser:   e.createUser,
			IssuePair:    e.issuePair,
			Warn:         e.warn,
		},
		Resolve: flows.ResolveDeps{
			FindByID:     e.findByID,
			UserNotFound: ErrUserNotFound,
			IssueAccess:  e.issueAccess,
			ParseAccess:  e.jwtManager.ParseAccess,
			Warn:         e.warn,
			Debug:        e.debug,
		},
		Profile: flows.ProfileDeps{
			Validate: func(in flows.ProfileInput) error {
				return ValidateProfileUpdate(ProfileUpdate{Email: in.Email, Firstname: in.Firstname})
			},
			UpdateByID:   e.updateProfile,
			UserNotFound: ErrUserNotFound,
			IssueAccess:  e.issueAccess,
			ParseAccess:  e.jwtManager.ParseAccess,
		},
		Lookup: flows.LookupDeps{
			FindByID:     e.findByID,
			UserNotFound: ErrUserNotFound,
		},
	})
}

func (e *Engine) findByEmail(ctx context.Context, email string) (flows.UserRecord, error) {
	ctx, cancel := e.directoryContext(ctx)
	defer cancel()

	u, err := e.directory.FindByEmail(ctx, email)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toRecord(u), nil
}

func (e *Engine) findByID(ctx context.Context, id string) (flows.UserRecord, error) {
	ctx, cancel := e.directoryContext(ctx)
	defer cancel()

	u, err := e.directory.FindByID(ctx, id)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toRecord(u), nil
}

func (e *Engine) createUser(ctx context.Context, email, digest string) (flows.UserRecord, error) {
	ctx, cancel := e.directoryContext(ctx)
	defer cancel()

	u, err := e.directory.Create(ctx, CreateUserInput{Email: email, PasswordHash: digest})
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toRecord(u), nil
}

func (e *Engine) updateProfile(ctx context.Context, id string, in flows.ProfileInput) (flows.UserRecord, error) {
	ctx, cancel := e.directoryContext(ctx)
	defer cancel()

	u, err := e.directory.UpdateByID(ctx, id, UserUpdate{Email: in.Email, Firstname: in.Firstname})
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toRecord(u), nil
}

func (e *Engine) updatePasswordHash(ctx context.Context, id, digest string) error {
	ctx, cancel := e.directoryContext(ctx)
	defer cancel()

	_, err := e.directory.UpdateByID(ctx, id, UserUpdate{PasswordHash: &digest})
	return err
}

func (e *Engine) issueAccess(u flows.UserRecord) (string, error) {
	return e.jwtManager.CreateAccess(jwt.AccessSubject{ID: u.ID, Email: u.Email, Firstname: u.Firstname})
}

// issuePair mints both credentials for a fresh login or registration.
func (e *Engine) issuePair(u flows.UserRecord) (session.TokenPair, error) {
	access, err := e.issueAccess(u)
	if err != nil {
		return session.TokenPair{}, err
	}
	refresh, err := e.jwtManager.CreateRefresh(u.ID)
	if err != nil {
		return session.TokenPair{}, err
	}
	return session.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func toRecord(u User) flows.UserRecord {
	return flows.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Firstname:    u.Firstname,
	}
}

func directoryError(err error) error {
	if errors.Is(err, ErrDirectory) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDirectory, err)
}

func hashError(err error) error {
	if errors.Is(err, password.ErrPasswordTooLong) || errors.Is(err, password.ErrEmptyPassword) {
		return fmt.Errorf("%w: %w", ErrInputInvalid, err)
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
