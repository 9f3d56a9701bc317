package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// CookieName is the name of the cookie carrying the packed credential pair.
const CookieName = "tokens"

// TokenPair is the cookie payload. An empty AccessToken means the access
// credential is absent.
type TokenPair struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken"`
}

// HasAccess reports whether the pair carries an access credential.
func (p TokenPair) HasAccess() bool { return p.AccessToken != "" }

// Pack encodes p as base64(JSON). It never fails.
func Pack(p TokenPair) string {
	// Marshalling a struct of two strings cannot fail.
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}

// Unpack reverses Pack. Invalid base64, invalid JSON, or a missing refresh
// credential all return ErrMalformed.
func Unpack(value string) (TokenPair, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var p TokenPair
	if err := json.Unmarshal(raw, &p); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.RefreshToken == "" {
		return TokenPair{}, fmt.Errorf("%w: refresh token missing", ErrMalformed)
	}
	return p, nil
}
