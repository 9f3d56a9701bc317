package cookieauth

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/cookieauth/internal/audit"
	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/session"
)

// User is a directory record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Firstname    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput is what Register hands to UserDirectory.Create. The
// password is already hashed.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Firstname    *string
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Firstname    *string
}

// UserDirectory is the persistence contract the engine depends on.
//
// Implementations return ErrUserNotFound for unknown ids or emails and
// ErrEmailTaken when Create or UpdateByID would duplicate an email. Every
// other error is reported to callers as ErrDirectory.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, in CreateUserInput) (User, error)
	UpdateByID(ctx context.Context, id string, upd UserUpdate) (User, error)
}

// PasswordHasher turns plaintext passwords into digests and checks them.
// *password.Argon2 satisfies it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
}

// PasswordUpgrader is implemented by hashers that can tell when a digest was
// produced with weaker parameters than they currently use. When the engine's
// hasher implements it, a successful login rehashes such digests.
// *password.Argon2 satisfies it.
type PasswordUpgrader interface {
	NeedsUpgrade(digest string) (bool, error)
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of a register call.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ProfileUpdate is the body of a profile change. At least one field must be set.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,max=128"`
}

// Session is a resolved cookie session.
//
// Cookie is the packed value to send back to the client. It is empty unless
// the access credential was reissued.
type Session struct {
	UserID   string
	Access   *jwt.AccessClaims
	Refresh  *jwt.RefreshClaims
	Pair     session.TokenPair
	Cookie   string
	Repaired bool
}

// Profile is the public view of a User.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Firstname *string `json:"firstname"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that writes events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink] logging at level.
func NewSlogSink(logger *slog.Logger, level slog.Level) *SlogSink {
	return internalaudit.NewSlogSink(logger, level)
}
