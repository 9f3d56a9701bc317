package flows

import (
	"context"

	"github.com/MrEthical07/cookieauth/session"
)

// RegisterFailureKind classifies register flow failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureInput
	RegisterFailureHash
	RegisterFailureCreate
	RegisterFailureIssue
)

// RegisterInput is the flow-local register request.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterResult carries the created user's pair or failure metadata.
type RegisterResult struct {
	Failure RegisterFailureKind
	Err     error
	UserID  string
	Pair    session.TokenPair
}

// RegisterDeps captures register dependencies.
type RegisterDeps struct {
	Validate     func(RegisterInput) error
	HashPassword func(string) (string, error)
	CreateUser   func(ctx context.Context, email, passwordHash string) (UserRecord, error)
	IssuePair    func(UserRecord) (session.TokenPair, error)
	Warn         func(string, ...any)
}

// RunRegister validates input, stores the user with a hashed password and
// issues a fresh pair. Directory errors, including duplicate emails, are
// returned as RegisterFailureCreate with the original cause.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) RegisterResult {
	if err := deps.Validate(in); err != nil {
		return RegisterResult{Failure: RegisterFailureInput, Err: err}
	}

	digest, err := deps.HashPassword(in.Password)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	user, err := deps.CreateUser(ctx, in.Email, digest)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureCreate, Err: err}
	}

	pair, err := deps.IssuePair(user)
	if err != nil {
		if deps.Warn != nil {
			deps.Warn("cookieauth: user created but credential issue failed", "user_id", user.ID, "error", err)
		}
		return RegisterResult{Failure: RegisterFailureIssue, Err: err, UserID: user.ID}
	}

	return RegisterResult{UserID: user.ID, Pair: pair}
}
