package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Resolve.FindByID != nil && s.deps.Login.FindByEmail != nil
}

// Login runs RunLogin with the wired deps.
func (s Service) Login(ctx context.Context, in LoginInput) LoginResult {
	return RunLogin(ctx, in, s.deps.Login)
}

// Register runs RunRegister with the wired deps.
func (s Service) Register(ctx context.Context, in RegisterInput) RegisterResult {
	return RunRegister(ctx, in, s.deps.Register)
}

// Resolve runs RunResolve against v.
func (s Service) Resolve(ctx context.Context, v SessionValidator) ResolveResult {
	return RunResolve(ctx, v, s.deps.Resolve)
}

// UpdateProfile runs RunUpdateProfile with the wired deps.
func (s Service) UpdateProfile(ctx context.Context, userID, refreshToken string, in ProfileInput) ProfileResult {
	return RunUpdateProfile(ctx, userID, refreshToken, in, s.deps.Profile)
}

// LookupUser runs RunLookupUser with the wired deps.
func (s Service) LookupUser(ctx context.Context, userID string) LookupResult {
	return RunLookupUser(ctx, userID, s.deps.Lookup)
}
