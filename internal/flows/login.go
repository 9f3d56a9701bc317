package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/cookieauth/session"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInput
	LoginFailureUnknownUser
	LoginFailureDirectory
	LoginFailureVerify
	LoginFailurePasswordMismatch
	LoginFailureIssue
)

// LoginInput is the flow-local login request.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued pair or failure metadata.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error
	UserID  string
	Pair    session.TokenPair
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Validate       func(LoginInput) error
	FindByEmail    func(context.Context, string) (UserRecord, error)
	UserNotFound   error
	VerifyPassword func(plain, digest string) (bool, error)
	IssuePair      func(UserRecord) (session.TokenPair, error)

	// PasswordTooLong is the verifier's error for an oversized plaintext.
	// It is a client mistake, not an unreadable digest.
	PasswordTooLong error

	// Optional rehash on login. Skipped when PasswordNeedsUpgrade is nil.
	PasswordNeedsUpgrade func(digest string) (bool, error)
	HashPassword         func(plain string) (string, error)
	UpdatePasswordHash   func(ctx context.Context, id, digest string) error

	Warn  func(string, ...any)
	Debug func(string, ...any)
}

// RunLogin validates input, checks the password and issues a fresh pair.
//
// The directory is not consulted when validation fails.
func RunLogin(ctx context.Context, in LoginInput, deps LoginDeps) LoginResult {
	if err := deps.Validate(in); err != nil {
		return LoginResult{Failure: LoginFailureInput, Err: err}
	}

	user, err := deps.FindByEmail(ctx, in.Email)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return LoginResult{Failure: LoginFailureUnknownUser, Err: err}
		}
		if deps.Warn != nil {
			deps.Warn("cookieauth: login directory lookup failed", "error", err)
		}
		return LoginResult{Failure: LoginFailureDirectory, Err: err}
	}

	ok, err := deps.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		if deps.PasswordTooLong != nil && errors.Is(err, deps.PasswordTooLong) {
			if deps.Debug != nil {
				deps.Debug("cookieauth: login password over length limit", "user_id", user.ID)
			}
			return LoginResult{Failure: LoginFailurePasswordMismatch, UserID: user.ID}
		}
		if deps.Warn != nil {
			deps.Warn("cookieauth: stored password digest unreadable", "user_id", user.ID, "error", err)
		}
		return LoginResult{Failure: LoginFailureVerify, Err: err, UserID: user.ID}
	}
	if !ok {
		return LoginResult{Failure: LoginFailurePasswordMismatch, UserID: user.ID}
	}

	upgradePasswordHash(ctx, user, in.Password, deps)

	pair, err := deps.IssuePair(user)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, UserID: user.ID}
	}

	return LoginResult{UserID: user.ID, Pair: pair}
}

// upgradePasswordHash rehashes a digest produced with weaker parameters than
// the current ones. Failures are logged and never fail the login.
func upgradePasswordHash(ctx context.Context, user UserRecord, plain string, deps LoginDeps) {
	if deps.PasswordNeedsUpgrade == nil || deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	needsUpgrade, err := deps.PasswordNeedsUpgrade(user.PasswordHash)
	if err != nil || !needsUpgrade {
		return
	}
	digest, err := deps.HashPassword(plain)
	if err != nil {
		if deps.Warn != nil {
			deps.Warn("cookieauth: password hash upgrade generation failed", "user_id", user.ID, "error", err)
		}
		return
	}
	if err := deps.UpdatePasswordHash(ctx, user.ID, digest); err != nil {
		if deps.Warn != nil {
			deps.Warn("cookieauth: password hash upgrade update failed", "user_id", user.ID, "error", err)
		}
		return
	}
	if deps.Debug != nil {
		deps.Debug("cookieauth: password hash upgraded", "user_id", user.ID)
	}
}
