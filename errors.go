package cookieauth

import (
	"errors"
	"net/http"
)

var (
	// ErrInputInvalid is returned when a login, register or profile request fails validation.
	ErrInputInvalid = errors.New("invalid input")
	// ErrUnauthorized is returned for bad credentials and for a session whose
	// credentials fail verification.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokensForbidden is returned when the session cookie is missing or cannot be unpacked.
	ErrTokensForbidden = errors.New("session tokens missing or malformed")
	// ErrDirectoryIntegrity is returned when a valid refresh credential names a
	// user the directory no longer knows.
	ErrDirectoryIntegrity = errors.New("session user no longer exists")
	// ErrUserNotFound is returned by UserDirectory implementations for unknown ids or emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by UserDirectory implementations on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDirectory wraps every other user directory failure.
	ErrDirectory = errors.New("user directory failure")
	// ErrInternal wraps hashing and signing failures.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	errInvalidCredentials = errors.New("invalid credentials")
)

// ErrorKind groups engine errors by how a caller should respond to them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInputInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindDirectory
	KindInternal
)

// String returns the lowercase kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInputInvalid:
		return "input_invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDirectory:
		return "directory"
	default:
		return "internal"
	}
}

// Response is the failure body returned to HTTP clients.
type Response struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

const (
	MessageLoginInvalid      = "error.login.400"
	MessageUnauthorized      = "error.user.401"
	MessageUserForbidden     = "error.user.403"
	MessageUserNotFound      = "error.user.404"
	MessageUserConflict      = "error.user.409"
	MessageTokensForbidden   = "error.tokens.403"
	MessageServerUnavailable = "error.server.500"
)

// KindOf classifies err. Wrapped causes are inspected with errors.Is; the
// most specific sentinel wins.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInputInvalid):
		return KindInputInvalid
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTokensForbidden), errors.Is(err, ErrDirectoryIntegrity):
		return KindForbidden
	case errors.Is(err, ErrEmailTaken):
		return KindConflict
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrDirectory):
		return KindDirectory
	default:
		return KindInternal
	}
}

// ResponseFor maps err to its status code and message key.
func ResponseFor(err error) Response {
	switch {
	case err == nil:
		return Response{StatusCode: http.StatusOK}
	case errors.Is(err, ErrInputInvalid):
		return Response{StatusCode: http.StatusBadRequest, StatusMessage: MessageLoginInvalid}
	case errors.Is(err, ErrUnauthorized):
		return Response{StatusCode: http.StatusUnauthorized, StatusMessage: MessageUnauthorized}
	case errors.Is(err, ErrTokensForbidden):
		return Response{StatusCode: http.StatusForbidden, StatusMessage: MessageTokensForbidden}
	case errors.Is(err, ErrDirectoryIntegrity):
		return Response{StatusCode: http.StatusForbidden, StatusMessage: MessageUserForbidden}
	case errors.Is(err, ErrEmailTaken):
		return Response{StatusCode: http.StatusConflict, StatusMessage: MessageUserConflict}
	case errors.Is(err, ErrUserNotFound):
		return Response{StatusCode: http.StatusNotFound, StatusMessage: MessageUserNotFound}
	default:
		return Response{StatusCode: http.StatusInternalServerError, StatusMessage: MessageServerUnavailable}
	}
}
