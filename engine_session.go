package cookieauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/cookieauth/internal/flows"
	"github.com/MrEthical07/cookieauth/session"
)

// Login checks the credentials and returns the packed cookie value of a
// fresh credential pair.
//
// Invalid input fails with ErrInputInvalid before the directory is consulted.
// An unknown email and a wrong password return the same ErrUnauthorized.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	res := e.flows.Login(ctx, flows.LoginInput{Email: req.Email, Password: req.Password})
	if res.Failure != flows.LoginFailureNone {
		err := e.loginError(res)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, err, nil)
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, res.UserID, nil, nil)
	return session.Pack(res.Pair), nil
}

func (e *Engine) loginError(res flows.LoginResult) error {
	switch res.Failure {
	case flows.LoginFailureInput:
		e.metricInc(MetricLoginInvalidInput)
		return fmt.Errorf("%w: %w", ErrInputInvalid, res.Err)
	case flows.LoginFailureDirectory:
		e.metricInc(MetricLoginFailure)
		e.metricInc(MetricDirectoryError)
		return directoryError(res.Err)
	case flows.LoginFailureIssue:
		e.metricInc(MetricLoginFailure)
		return fmt.Errorf("%w: %w", ErrInternal, res.Err)
	default:
		// Unknown user, wrong password and unreadable digest are indistinguishable to the caller.
		e.metricInc(MetricLoginFailure)
		return fmt.Errorf("%w: %w", ErrUnauthorized, errInvalidCredentials)
	}
}

// Register creates a user with a hashed password and returns the packed
// cookie value of a fresh credential pair.
//
// A duplicate email surfaces as ErrDirectory wrapping ErrEmailTaken.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	res := e.flows.Register(ctx, flows.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if res.Failure != flows.RegisterFailureNone {
		err := e.registerError(res)
		e.emitAudit(ctx, auditEventRegisterFailure, false, res.UserID, err, nil)
		return "", err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, res.UserID, nil, nil)
	return session.Pack(res.Pair), nil
}

func (e *Engine) registerError(res flows.RegisterResult) error {
	e.metricInc(MetricRegisterFailure)
	switch res.Failure {
	case flows.RegisterFailureInput:
		return fmt.Errorf("%w: %w", ErrInputInvalid, res.Err)
	case flows.RegisterFailureHash:
		return hashError(res.Err)
	case flows.RegisterFailureCreate:
		if errors.Is(res.Err, ErrEmailTaken) {
			e.metricInc(MetricRegisterDuplicate)
		} else {
			e.metricInc(MetricDirectoryError)
		}
		return directoryError(res.Err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, res.Err)
	}
}

// ResolveSession decodes and verifies the "tokens" cookie of src.
//
// When the refresh credential is valid and the access credential is expired
// or absent, a new access credential is minted and Session.Cookie holds the
// repacked value; the caller must send it back. The refresh credential is
// never reissued here.
func (e *Engine) ResolveSession(ctx context.Context, src session.CookieSource) (*Session, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := e.now()
	defer e.observeLatency(MetricResolveLatency, start)

	res := e.flows.Resolve(ctx, session.NewValidator(src, e.jwtManager))
	if res.Failure != flows.ResolveFailureNone {
		err := e.resolveError(res)
		e.emitAudit(ctx, auditEventSessionRejected, false, res.UserID, err, nil)
		return nil, err
	}

	e.metricInc(MetricSessionResolved)
	if res.Repaired {
		e.metricInc(MetricSessionRepaired)
		e.emitAudit(ctx, auditEventSessionRepaired, true, res.UserID, nil, nil)
	}

	return &Session{
		UserID:   res.UserID,
		Access:   res.Access,
		Refresh:  res.Refresh,
		Pair:     res.Pair,
		Cookie:   res.Cookie,
		Repaired: res.Repaired,
	}, nil
}

func (e *Engine) resolveError(res flows.ResolveResult) error {
	switch res.Failure {
	case flows.ResolveFailureNoSession:
		e.metricInc(MetricSessionMissing)
		return fmt.Errorf("%w: %w", ErrTokensForbidden, res.Err)
	case flows.ResolveFailureRefreshInvalid, flows.ResolveFailureAccessInvalid:
		e.metricInc(MetricSessionRejected)
		return fmt.Errorf("%w: %w", ErrUnauthorized, res.Err)
	case flows.ResolveFailureUserMissing:
		e.metricInc(MetricSessionUserMissing)
		return fmt.Errorf("%w: %w", ErrDirectoryIntegrity, res.Err)
	case flows.ResolveFailureDirectory:
		e.metricInc(MetricDirectoryError)
		return directoryError(res.Err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, res.Err)
	}
}

// CurrentUser looks up the user of sess. A missing user is ErrUserNotFound.
func (e *Engine) CurrentUser(ctx context.Context, sess *Session) (Profile, error) {
	if !e.ready() {
		return Profile{}, ErrEngineNotReady
	}
	if sess == nil || sess.UserID == "" {
		return Profile{}, ErrTokensForbidden
	}

	res := e.flows.LookupUser(ctx, sess.UserID)
	switch res.Failure {
	case flows.LookupFailureNone:
		return Profile{ID: res.User.ID, Email: res.User.Email, Firstname: res.User.Firstname}, nil
	case flows.LookupFailureNotFound:
		return Profile{}, res.Err
	default:
		e.metricInc(MetricDirectoryError)
		return Profile{}, directoryError(res.Err)
	}
}

// UpdateProfile applies upd to the session's user and returns a session whose
// access credential reflects the change. The refresh credential is kept.
func (e *Engine) UpdateProfile(ctx context.Context, sess *Session, upd ProfileUpdate) (*Session, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if sess == nil || sess.UserID == "" || sess.Pair.RefreshToken == "" {
		return nil, ErrTokensForbidden
	}

	res := e.flows.UpdateProfile(ctx, sess.UserID, sess.Pair.RefreshToken, flows.ProfileInput{
		Email:     upd.Email,
		Firstname: upd.Firstname,
	})
	if res.Failure != flows.ProfileFailureNone {
		var err error
		switch res.Failure {
		case flows.ProfileFailureInput:
			err = fmt.Errorf("%w: %w", ErrInputInvalid, res.Err)
		case flows.ProfileFailureNotFound:
			err = res.Err
		case flows.ProfileFailureDirectory:
			e.metricInc(MetricDirectoryError)
			err = directoryError(res.Err)
		default:
			err = fmt.Errorf("%w: %w", ErrInternal, res.Err)
		}
		e.emitAudit(ctx, auditEventProfileFailure, false, sess.UserID, err, nil)
		return nil, err
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdated, true, sess.UserID, nil, nil)

	return &Session{
		UserID:  sess.UserID,
		Access:  res.Access,
		Refresh: sess.Refresh,
		Pair:    res.Pair,
		Cookie:  res.Cookie,
	}, nil
}

// SessionSubject returns the user id carried by the refresh credential of src.
// It neither consults the directory nor reissues anything, and it records no
// metrics or audit events.
func (e *Engine) SessionSubject(src session.CookieSource) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	v := session.NewValidator(src, e.jwtManager)
	if _, err := v.Decode(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokensForbidden, err)
	}
	claims, err := v.RefreshClaims()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims.ID, nil
}

// Logout records the end of a session. The cookie itself is cleared by the
// transport with ClearCookie; credentials are not revoked server-side.
func (e *Engine) Logout(ctx context.Context, userID string) {
	if e == nil {
		return
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
}
