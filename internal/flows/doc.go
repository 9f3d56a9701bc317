// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunRegister, RunResolve, RunUpdateProfile,
// RunLookupUser) accepts a typed dependency struct and returns a Result with
// a FailureKind instead of a host error. The Engine maps kinds to its own
// sentinel errors, status codes, metrics and audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate the user directory, the password hasher and the
// credential codec through closures. They do NOT own any of these resources;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import cookieauth (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency closures.
package flows
