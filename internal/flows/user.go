package flows

import (
	"context"
	"errors"
)

// UserRecord is the flow-local user model.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Firstname    *string
}

// LookupFailureKind classifies direct user lookups.
type LookupFailureKind int

const (
	LookupFailureNone LookupFailureKind = iota
	LookupFailureNotFound
	LookupFailureDirectory
)

// LookupResult carries the found user or failure metadata.
type LookupResult struct {
	Failure LookupFailureKind
	Err     error
	User    UserRecord
}

// LookupDeps captures direct lookup dependencies.
type LookupDeps struct {
	FindByID     func(context.Context, string) (UserRecord, error)
	UserNotFound error
}

// RunLookupUser fetches a user by id. A miss is reported as
// LookupFailureNotFound rather than as a directory failure.
func RunLookupUser(ctx context.Context, userID string, deps LookupDeps) LookupResult {
	user, err := deps.FindByID(ctx, userID)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return LookupResult{Failure: LookupFailureNotFound, Err: err}
		}
		return LookupResult{Failure: LookupFailureDirectory, Err: err}
	}
	return LookupResult{User: user}
}
