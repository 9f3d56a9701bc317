// Package cookieauth issues and rotates a paired access and refresh credential
// carried in a single "tokens" cookie.
//
// The access credential is short-lived and carries the user's id, email and
// first name. The refresh credential is long-lived and carries the id only.
// Both are HS256 JWTs signed with distinct secrets. When a request arrives
// with a valid refresh credential and an expired or absent access credential,
// [Engine.ResolveSession] silently mints a new access credential and hands
// back a repacked cookie; the refresh credential is kept byte for byte.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// cookieauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserDirectory] and [PasswordHasher] contracts, and the error taxonomy
// ([KindOf], [ResponseFor]). Flow orchestration, audit dispatch and metric
// storage live under internal/.
//
// # What this package must NOT do
//
//   - Keep server-side session state; the cookie is the only session record.
//   - Retry directory calls.
//   - Import a directory implementation (they import this package).
package cookieauth
