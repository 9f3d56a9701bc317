package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is returned when a credential is not a three-segment token
	// or cannot be decoded.
	ErrMalformed = errors.New("credential malformed")
	// ErrExpired is returned when a correctly signed credential is past its expiry.
	ErrExpired = errors.New("credential expired")
	// ErrInvalidSignature is returned for every other verification failure:
	// wrong secret, wrong algorithm, missing expiry, issuer mismatch.
	ErrInvalidSignature = errors.New("credential signature invalid")
)

// classify folds a jwt/v5 parse error into one of the package sentinels.
//
// jwt/v5 joins the validation errors it finds, so a token that is both
// expired and badly signed never reaches claim validation: the signature
// check runs first and only ErrTokenSignatureInvalid is reported.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrInvalidSignature
	}
}
