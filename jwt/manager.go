package jwt

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Reference lifetimes for the two credentials.
const (
	DefaultAccessTTL  = 600 * time.Second
	DefaultRefreshTTL = 86400 * time.Second
)

// shape is the structural check applied before any signature work.
var shape = regexp.MustCompile(`^[\w-]+\.[\w-]+\.[\w-]+$`)

// Config holds the secrets and lifetimes of both credentials.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration

	// Now overrides the clock used for issuing and verifying. Nil means time.Now.
	Now func() time.Time
}

// Manager signs and verifies access and refresh credentials.
//
// Manager is immutable after NewManager and safe for concurrent use.
type Manager struct {
	config Config
	method jwt.SigningMethod
}

// AccessSubject is the user data embedded in an access credential.
type AccessSubject struct {
	ID        string
	Email     string
	Firstname *string
}

// AccessClaims is the verified content of an access credential.
type AccessClaims struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Firstname *string `json:"firstname"`
	jwt.RegisteredClaims
}

// RefreshClaims is the verified content of a refresh credential. It carries
// the user id only.
type RefreshClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
//
// NewManager returns an error when a secret is missing, the two secrets are
// equal, a TTL is not positive, or the access TTL is not strictly shorter
// than the refresh TTL.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg, method: jwt.SigningMethodHS256}, nil
}

// AccessTTL returns the configured access credential lifetime.
func (j *Manager) AccessTTL() time.Duration { return j.config.AccessTTL }

// RefreshTTL returns the configured refresh credential lifetime.
func (j *Manager) RefreshTTL() time.Duration { return j.config.RefreshTTL }

// CreateAccess signs an access credential for subject that expires after AccessTTL.
func (j *Manager) CreateAccess(subject AccessSubject) (string, error) {
	if subject.ID == "" {
		return "", errors.New("access subject id is required")
	}
	claims := AccessClaims{
		ID:               subject.ID,
		Email:            subject.Email,
		Firstname:        subject.Firstname,
		RegisteredClaims: j.registered(j.config.AccessTTL),
	}
	return j.sign(claims, j.config.AccessSecret)
}

// CreateRefresh signs a refresh credential for the user id that expires after RefreshTTL.
func (j *Manager) CreateRefresh(id string) (string, error) {
	if id == "" {
		return "", errors.New("refresh subject id is required")
	}
	claims := RefreshClaims{
		ID:               id,
		RegisteredClaims: j.registered(j.config.RefreshTTL),
	}
	return j.sign(claims, j.config.RefreshSecret)
}

// ParseAccess verifies an access credential against the access secret.
//
// The returned error, when non-nil, matches exactly one of ErrMalformed,
// ErrExpired or ErrInvalidSignature with errors.Is.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims, j.config.AccessSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrMalformed)
	}
	return claims, nil
}

// ParseRefresh verifies a refresh credential against the refresh secret.
// Errors are classified the same way as ParseAccess.
func (j *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims, j.config.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrMalformed)
	}
	return claims, nil
}

func (j *Manager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := j.config.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    j.config.Issuer,
	}
}

func (j *Manager) sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(j.method, claims).SignedString(secret)
}

func (j *Manager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	if !shape.MatchString(tokenStr) {
		return ErrMalformed
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.config.Now),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", classify(err), err)
	}
	if !token.Valid {
		return ErrInvalidSignature
	}
	return nil
}
