package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/cookieauth/session"
)

func loginDeps(user UserRecord, findErr error, match bool) (LoginDeps, *int) {
	finds := 0
	return LoginDeps{
		Validate: func(in LoginInput) error {
			if in.Email == "" || in.Password == "" {
				return errors.New("invalid")
			}
			return nil
		},
		FindByEmail: func(context.Context, string) (UserRecord, error) {
			finds++
			return user, findErr
		},
		UserNotFound: errNotFound,
		VerifyPassword: func(string, string) (bool, error) {
			return match, nil
		},
		IssuePair: func(u UserRecord) (session.TokenPair, error) {
			return session.TokenPair{AccessToken: "a.a.a", RefreshToken: "r.r.r"}, nil
		},
	}, &finds
}

func TestRunLoginInvalidInputSkipsDirectory(t *testing.T) {
	deps, finds := loginDeps(UserRecord{}, nil, true)

	res := RunLogin(context.Background(), LoginInput{Email: "a@b.c"}, deps)
	if res.Failure != LoginFailureInput {
		t.Fatalf("expected input failure, got %v", res.Failure)
	}
	if *finds != 0 {
		t.Fatal("expected no directory call")
	}
}

func TestRunLoginOutcomes(t *testing.T) {
	user := UserRecord{ID: "u1", Email: "a@b.c", PasswordHash: "digest"}

	cases := []struct {
		name    string
		findErr error
		match   bool
		want    LoginFailureKind
	}{
		{name: "success", match: true, want: LoginFailureNone},
		{name: "unknown user", findErr: errNotFound, want: LoginFailureUnknownUser},
		{name: "wrong password", match: false, want: LoginFailurePasswordMismatch},
		{name: "directory down", findErr: errors.New("conn refused"), want: LoginFailureDirectory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps, _ := loginDeps(user, tc.findErr, tc.match)
			res := RunLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"}, deps)
			if res.Failure != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, res.Failure)
			}
			if tc.want == LoginFailureNone && res.Pair.RefreshToken == "" {
				t.Fatal("expected issued pair")
			}
		})
	}
}

func TestRunLoginOversizedPasswordIsMismatchWithoutWarning(t *testing.T) {
	errTooLong := errors.New("too long")
	deps, _ := loginDeps(UserRecord{ID: "u1", PasswordHash: "digest"}, nil, false)
	deps.PasswordTooLong = errTooLong
	deps.VerifyPassword = func(string, string) (bool, error) { return false, errTooLong }
	warned := 0
	deps.Warn = func(string, ...any) { warned++ }

	res := RunLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"}, deps)
	if res.Failure != LoginFailurePasswordMismatch {
		t.Fatalf("expected mismatch, got %v", res.Failure)
	}
	if warned != 0 {
		t.Fatalf("expected no warning, got %d", warned)
	}
}

func TestRunLoginUpgradesWeakDigest(t *testing.T) {
	cases := []struct {
		name       string
		needs      bool
		updateErr  error
		wantUpdate string
		wantWarn   int
	}{
		{name: "current digest", needs: false},
		{name: "weak digest", needs: true, wantUpdate: "new-digest"},
		{name: "update fails", needs: true, updateErr: errors.New("down"), wantUpdate: "new-digest", wantWarn: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps, _ := loginDeps(UserRecord{ID: "u1", PasswordHash: "old-digest"}, nil, true)
			var updated string
			warned := 0
			deps.PasswordNeedsUpgrade = func(digest string) (bool, error) {
				if digest != "old-digest" {
					t.Fatalf("unexpected digest %q", digest)
				}
				return tc.needs, nil
			}
			deps.HashPassword = func(string) (string, error) { return "new-digest", nil }
			deps.UpdatePasswordHash = func(_ context.Context, id, digest string) error {
				if id != "u1" {
					t.Fatalf("unexpected id %q", id)
				}
				updated = digest
				return tc.updateErr
			}
			deps.Warn = func(string, ...any) { warned++ }

			res := RunLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"}, deps)
			if res.Failure != LoginFailureNone {
				t.Fatalf("expected success, got %v", res.Failure)
			}
			if updated != tc.wantUpdate {
				t.Fatalf("expected update %q, got %q", tc.wantUpdate, updated)
			}
			if warned != tc.wantWarn {
				t.Fatalf("expected %d warnings, got %d", tc.wantWarn, warned)
			}
		})
	}
}

func TestRunRegisterInvalidInputSkipsDirectory(t *testing.T) {
	creates := 0
	deps := RegisterDeps{
		Validate: func(in RegisterInput) error {
			if in.Password != in.ConfirmPassword {
				return errors.New("mismatch")
			}
			return nil
		},
		HashPassword: func(p string) (string, error) { return "h(" + p + ")", nil },
		CreateUser: func(_ context.Context, email, digest string) (UserRecord, error) {
			creates++
			return UserRecord{ID: "u1", Email: email, PasswordHash: digest}, nil
		},
		IssuePair: func(u UserRecord) (session.TokenPair, error) {
			return session.TokenPair{AccessToken: "a.a.a", RefreshToken: "r.r.r"}, nil
		},
	}

	res := RunRegister(context.Background(), RegisterInput{Email: "a@b.c", Password: "x", ConfirmPassword: "y"}, deps)
	if res.Failure != RegisterFailureInput || creates != 0 {
		t.Fatalf("expected input failure without create, got %v with %d creates", res.Failure, creates)
	}

	res = RunRegister(context.Background(), RegisterInput{Email: "a@b.c", Password: "x", ConfirmPassword: "x"}, deps)
	if res.Failure != RegisterFailureNone || creates != 1 {
		t.Fatalf("expected success with one create, got %v with %d creates", res.Failure, creates)
	}
	if res.UserID != "u1" {
		t.Fatalf("expected user id u1, got %q", res.UserID)
	}
}

func TestRunRegisterSurfacesCreateError(t *testing.T) {
	dup := errors.New("duplicate")
	deps := RegisterDeps{
		Validate:     func(RegisterInput) error { return nil },
		HashPassword: func(p string) (string, error) { return p, nil },
		CreateUser: func(context.Context, string, string) (UserRecord, error) {
			return UserRecord{}, dup
		},
		IssuePair: func(UserRecord) (session.TokenPair, error) {
			t.Fatal("issue must not run after a failed create")
			return session.TokenPair{}, nil
		},
	}

	res := RunRegister(context.Background(), RegisterInput{Email: "a@b.c", Password: "x", ConfirmPassword: "x"}, deps)
	if res.Failure != RegisterFailureCreate || !errors.Is(res.Err, dup) {
		t.Fatalf("expected create failure wrapping duplicate, got %v / %v", res.Failure, res.Err)
	}
}
