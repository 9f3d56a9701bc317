// Package session packs the credential pair into the single "tokens" cookie
// and decodes and verifies it once per request.
//
// # Cookie payload
//
// The cookie value is standard base64 of the JSON object
// {"accessToken": "...", "refreshToken": "..."}. The access credential may be
// absent; the refresh credential may not. Every decoding failure collapses into
// [ErrMalformed].
//
// # Architecture boundaries
//
// This package does not talk to the user directory and does not decide what a
// failure means for the caller. It reports which credential failed and why;
// the Engine owns the repair and rejection policy.
package session
