// Package jwt issues and verifies the paired access and refresh credentials.
//
// Both credentials are HS256 JWTs signed with independent secrets and
// independent lifetimes. Verification failures are classified as exactly
// one of ErrMalformed, ErrExpired or ErrInvalidSignature so callers can
// decide between a silent repair and a hard failure.
package jwt
