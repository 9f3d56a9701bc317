package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/cookieauth/jwt"
)

var (
	// ErrMissingCookie is returned when the request carries no "tokens" cookie
	// or carries an empty one.
	ErrMissingCookie = errors.New("session cookie missing")
	// ErrMalformed is returned when the cookie value cannot be unpacked.
	ErrMalformed = errors.New("session cookie malformed")
)

// CookieSource is anything that can look up a request cookie by name.
// *http.Request satisfies it.
type CookieSource interface {
	Cookie(name string) (*http.Cookie, error)
}

// TokenVerifier verifies the two credentials. *jwt.Manager satisfies it.
type TokenVerifier interface {
	ParseAccess(token string) (*jwt.AccessClaims, error)
	ParseRefresh(token string) (*jwt.RefreshClaims, error)
}

// Validator decodes and verifies the credential pair of a single request.
//
// A Validator caches the decoded pair and must not be shared across requests.
type Validator struct {
	source   CookieSource
	verifier TokenVerifier

	decoded bool
	pair    TokenPair
	err     error
}

// NewValidator returns a Validator reading from source and verifying with verifier.
func NewValidator(source CookieSource, verifier TokenVerifier) *Validator {
	return &Validator{source: source, verifier: verifier}
}

// Decode reads and unpacks the "tokens" cookie. The first result is cached.
func (v *Validator) Decode() (TokenPair, error) {
	if v.decoded {
		return v.pair, v.err
	}
	v.decoded = true
	v.pair, v.err = v.decode()
	return v.pair, v.err
}

func (v *Validator) decode() (TokenPair, error) {
	if v.source == nil {
		return TokenPair{}, ErrMissingCookie
	}
	c, err := v.source.Cookie(CookieName)
	if err != nil || c == nil || c.Value == "" {
		return TokenPair{}, ErrMissingCookie
	}
	return Unpack(c.Value)
}

// AccessClaims verifies the access credential. It returns (nil, nil) only
// when the pair has no access credential; verification failures are returned
// wrapping jwt.ErrExpired, jwt.ErrInvalidSignature or jwt.ErrMalformed.
func (v *Validator) AccessClaims() (*jwt.AccessClaims, error) {
	pair, err := v.Decode()
	if err != nil {
		return nil, err
	}
	if !pair.HasAccess() {
		return nil, nil
	}
	claims, err := v.verifier.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	return claims, nil
}

// RefreshClaims verifies the refresh credential.
func (v *Validator) RefreshClaims() (*jwt.RefreshClaims, error) {
	pair, err := v.Decode()
	if err != nil {
		return nil, err
	}
	claims, err := v.verifier.ParseRefresh(pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return claims, nil
}
