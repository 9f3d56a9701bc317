package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	testAccessSecret  = []byte("access-secret-access-secret-0123")
	testRefreshSecret = []byte("refresh-secret-refresh-secret-01")
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	cfg := Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
	}
	if clock != nil {
		cfg.Now = clock.Now
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	base := Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}

	cases := map[string]func(c *Config){
		"missing access secret":  func(c *Config) { c.AccessSecret = nil },
		"missing refresh secret": func(c *Config) { c.RefreshSecret = nil },
		"equal secrets":          func(c *Config) { c.RefreshSecret = c.AccessSecret },
		"zero access ttl":        func(c *Config) { c.AccessTTL = 0 },
		"negative refresh ttl":   func(c *Config) { c.RefreshTTL = -time.Second },
		"access not shorter":     func(c *Config) { c.AccessTTL = c.RefreshTTL },
		"leeway too large":       func(c *Config) { c.Leeway = time.Hour },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config to be rejected")
			}
		})
	}
}

func TestCreateAndParseAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, nil)
	first := "Ada"

	tok, err := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c", Firstname: &first})
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	claims, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.ID != "u1" || claims.Email != "a@b.c" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Firstname == nil || *claims.Firstname != "Ada" {
		t.Fatalf("expected firstname Ada, got %v", claims.Firstname)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("expected iat and exp")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultAccessTTL {
		t.Fatalf("expected access lifetime %v, got %v", DefaultAccessTTL, got)
	}
}

func TestAccessClaimsKeepNullFirstname(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	claims, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Firstname != nil {
		t.Fatalf("expected nil firstname, got %q", *claims.Firstname)
	}
}

func TestFreshPairExpiryOrdering(t *testing.T) {
	m := newTestManager(t, nil)

	access, err := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	refresh, err := m.CreateRefresh("u1")
	if err != nil {
		t.Fatalf("create refresh: %v", err)
	}

	ac, err := m.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	rc, err := m.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if rc.ID != ac.ID {
		t.Fatalf("expected matching ids, got %q and %q", rc.ID, ac.ID)
	}
	if !ac.ExpiresAt.Before(rc.ExpiresAt.Time) {
		t.Fatalf("expected access exp %v before refresh exp %v", ac.ExpiresAt, rc.ExpiresAt)
	}
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, nil)

	access, _ := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c"})
	refresh, _ := m.CreateRefresh("u1")

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected access token to fail refresh verification with invalid signature, got %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected refresh token to fail access verification with invalid signature, got %v", err)
	}
}

func TestParseClassifiesExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	access, _ := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c"})
	refresh, _ := m.CreateRefresh("u1")

	clock.Advance(DefaultAccessTTL + time.Second)
	if _, err := m.ParseAccess(access); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expired access, got %v", err)
	}
	if _, err := m.ParseRefresh(refresh); err != nil {
		t.Fatalf("expected refresh still valid, got %v", err)
	}

	clock.Advance(DefaultRefreshTTL)
	if _, err := m.ParseRefresh(refresh); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expired refresh, got %v", err)
	}
}

func TestParseHonorsLeeway(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m, err := NewManager(Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Leeway:        30 * time.Second,
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	access, _ := m.CreateAccess(AccessSubject{ID: "u1"})
	clock.Advance(time.Minute + 10*time.Second)
	if _, err := m.ParseAccess(access); err != nil {
		t.Fatalf("expected token inside leeway to parse: %v", err)
	}
}

func TestParseClassifiesMalformed(t *testing.T) {
	m := newTestManager(t, nil)

	for _, tok := range []string{
		"",
		"abc",
		"a.b",
		"a.b.c.d",
		"a.b.c d",
		"a+b.c.d",
		"a.b.c=",
		"aaaa.bbbb.cccc",
	} {
		if _, err := m.ParseAccess(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected %q to be malformed, got %v", tok, err)
		}
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t, nil)

	claims := RefreshClaims{ID: "u1", RegisteredClaims: gjwt.RegisteredClaims{
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS512, claims).SignedString(testRefreshSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := m.ParseRefresh(tok); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected wrong algorithm to be rejected as invalid signature, got %v", err)
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, RefreshClaims{ID: "u1"}).SignedString(testRefreshSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := m.ParseRefresh(tok); err == nil {
		t.Fatal("expected token without exp to be rejected")
	}
}

func TestTamperedPayloadIsInvalidSignature(t *testing.T) {
	m := newTestManager(t, nil)
	other, err := NewManager(Config{
		AccessSecret:  []byte("another-access-secret-0123456789"),
		RefreshSecret: testRefreshSecret,
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	mine, _ := m.CreateAccess(AccessSubject{ID: "u1", Email: "a@b.c"})
	forged, _ := other.CreateAccess(AccessSubject{ID: "admin", Email: "root@b.c"})

	parts := strings.Split(mine, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := m.ParseAccess(spliced); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected spliced token to fail signature check, got %v", err)
	}
}

func TestCreateRequiresSubjectID(t *testing.T) {
	m := newTestManager(t, nil)
	if _, err := m.CreateAccess(AccessSubject{Email: "a@b.c"}); err == nil {
		t.Fatal("expected missing id to fail")
	}
	if _, err := m.CreateRefresh(""); err == nil {
		t.Fatal("expected missing id to fail")
	}
}
