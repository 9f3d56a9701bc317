// Package middleware adapts cookieauth.Engine to net/http.
//
// [Guard] resolves the "tokens" cookie of every request, writes a repaired
// cookie back when the engine reissued the access credential, and injects the
// resolved session into the request context. Failures are answered with the
// engine's JSON error body.
//
// This package translates HTTP semantics into Engine calls. It does not parse
// credentials itself.
package middleware
