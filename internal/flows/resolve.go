package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/session"
)

// ResolveFailureKind classifies session resolution failures for root-level mapping.
type ResolveFailureKind int

const (
	ResolveFailureNone ResolveFailureKind = iota
	// ResolveFailureNoSession: the cookie is missing or cannot be unpacked.
	ResolveFailureNoSession
	// ResolveFailureRefreshInvalid: the refresh credential did not verify.
	ResolveFailureRefreshInvalid
	// ResolveFailureAccessInvalid: the access credential failed for a reason
	// other than expiry.
	ResolveFailureAccessInvalid
	// ResolveFailureUserMissing: repair found no user for the refresh id.
	ResolveFailureUserMissing
	ResolveFailureDirectory
	ResolveFailureIssue
)

// SessionValidator is the per-request view of the cookie. *session.Validator satisfies it.
type SessionValidator interface {
	Decode() (session.TokenPair, error)
	AccessClaims() (*jwt.AccessClaims, error)
	RefreshClaims() (*jwt.RefreshClaims, error)
}

// ResolveResult carries the verified claims or failure metadata. Cookie is
// non-empty only when the session was repaired.
type ResolveResult struct {
	Failure  ResolveFailureKind
	Err      error
	UserID   string
	Access   *jwt.AccessClaims
	Refresh  *jwt.RefreshClaims
	Pair     session.TokenPair
	Cookie   string
	Repaired bool
}

// ResolveDeps captures session resolution dependencies.
type ResolveDeps struct {
	FindByID     func(context.Context, string) (UserRecord, error)
	UserNotFound error
	IssueAccess  func(UserRecord) (string, error)
	ParseAccess  func(string) (*jwt.AccessClaims, error)
	Warn         func(string, ...any)
	Debug        func(string, ...any)
}

// RunResolve walks the session state machine:
//
//	decode fails                      -> NoSession
//	refresh fails                     -> RefreshInvalid
//	refresh ok, access ok             -> success
//	refresh ok, access expired/absent -> repair
//	refresh ok, access other failure  -> AccessInvalid
//
// Repair looks the user up by the refresh id, mints a new access credential
// and repacks it with the original refresh credential bytes.
func RunResolve(ctx context.Context, v SessionValidator, deps ResolveDeps) ResolveResult {
	pair, err := v.Decode()
	if err != nil {
		return ResolveResult{Failure: ResolveFailureNoSession, Err: err}
	}

	refresh, err := v.RefreshClaims()
	if err != nil {
		return ResolveResult{Failure: ResolveFailureRefreshInvalid, Err: err}
	}

	access, err := v.AccessClaims()
	switch {
	case err == nil && access != nil:
		if access.ID != refresh.ID {
			return ResolveResult{
				Failure: ResolveFailureAccessInvalid,
				Err:     errors.New("access and refresh credentials belong to different users"),
				UserID:  refresh.ID,
			}
		}
		return ResolveResult{
			UserID:  refresh.ID,
			Access:  access,
			Refresh: refresh,
			Pair:    pair,
		}
	case err == nil, errors.Is(err, jwt.ErrExpired):
		return repair(ctx, pair, refresh, deps)
	default:
		return ResolveResult{Failure: ResolveFailureAccessInvalid, Err: err, UserID: refresh.ID}
	}
}

func repair(ctx context.Context, pair session.TokenPair, refresh *jwt.RefreshClaims, deps ResolveDeps) ResolveResult {
	user, err := deps.FindByID(ctx, refresh.ID)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return ResolveResult{Failure: ResolveFailureUserMissing, Err: err, UserID: refresh.ID}
		}
		if deps.Warn != nil {
			deps.Warn("cookieauth: repair directory lookup failed", "user_id", refresh.ID, "error", err)
		}
		return ResolveResult{Failure: ResolveFailureDirectory, Err: err, UserID: refresh.ID}
	}

	token, err := deps.IssueAccess(user)
	if err != nil {
		return ResolveResult{Failure: ResolveFailureIssue, Err: err, UserID: refresh.ID}
	}
	access, err := deps.ParseAccess(token)
	if err != nil {
		return ResolveResult{Failure: ResolveFailureIssue, Err: err, UserID: refresh.ID}
	}

	repaired := session.TokenPair{AccessToken: token, RefreshToken: pair.RefreshToken}
	if deps.Debug != nil {
		deps.Debug("cookieauth: session repaired", "user_id", refresh.ID)
	}

	return ResolveResult{
		UserID:   refresh.ID,
		Access:   access,
		Refresh:  refresh,
		Pair:     repaired,
		Cookie:   session.Pack(repaired),
		Repaired: true,
	}
}
