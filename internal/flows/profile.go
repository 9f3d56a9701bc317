package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/session"
)

// ProfileFailureKind classifies profile update failures for root-level mapping.
type ProfileFailureKind int

const (
	ProfileFailureNone ProfileFailureKind = iota
	ProfileFailureInput
	ProfileFailureNotFound
	ProfileFailureDirectory
	ProfileFailureIssue
)

// ProfileInput is the flow-local profile change. Nil fields are left unchanged.
type ProfileInput struct {
	Email     *string
	Firstname *string
}

// ProfileResult carries the refreshed session after an update.
type ProfileResult struct {
	Failure ProfileFailureKind
	Err     error
	User    UserRecord
	Access  *jwt.AccessClaims
	Pair    session.TokenPair
	Cookie  string
}

// ProfileDeps captures profile update dependencies.
type ProfileDeps struct {
	Validate     func(ProfileInput) error
	UpdateByID   func(context.Context, string, ProfileInput) (UserRecord, error)
	UserNotFound error
	IssueAccess  func(UserRecord) (string, error)
	ParseAccess  func(string) (*jwt.AccessClaims, error)
}

// RunUpdateProfile applies in to the user and reissues the access credential
// so its claims reflect the change. refreshToken is carried over unchanged.
func RunUpdateProfile(ctx context.Context, userID, refreshToken string, in ProfileInput, deps ProfileDeps) ProfileResult {
	if err := deps.Validate(in); err != nil {
		return ProfileResult{Failure: ProfileFailureInput, Err: err}
	}

	user, err := deps.UpdateByID(ctx, userID, in)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return ProfileResult{Failure: ProfileFailureNotFound, Err: err}
		}
		return ProfileResult{Failure: ProfileFailureDirectory, Err: err}
	}

	token, err := deps.IssueAccess(user)
	if err != nil {
		return ProfileResult{Failure: ProfileFailureIssue, Err: err, User: user}
	}
	access, err := deps.ParseAccess(token)
	if err != nil {
		return ProfileResult{Failure: ProfileFailureIssue, Err: err, User: user}
	}

	pair := session.TokenPair{AccessToken: token, RefreshToken: refreshToken}
	return ProfileResult{
		User:   user,
		Access: access,
		Pair:   pair,
		Cookie: session.Pack(pair),
	}
}
