package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/session"
)

// SessionResolver is the part of *cookieauth.Engine the guard needs.
type SessionResolver interface {
	ResolveSession(ctx context.Context, src session.CookieSource) (*cookieauth.Session, error)
	Cookie(value string) *http.Cookie
}

type sessionContextKey struct{}

// SessionFromContext returns the session stored by Guard.
func SessionFromContext(ctx context.Context) (*cookieauth.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*cookieauth.Session)
	return sess, ok && sess != nil
}

// WithSession stores sess in ctx the way Guard does.
func WithSession(ctx context.Context, sess *cookieauth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// Guard rejects requests without a valid cookie session.
func Guard(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				WriteError(w, cookieauth.ErrEngineNotReady)
				return
			}

			ctx := RequestContext(r)
			sess, err := resolver.ResolveSession(ctx, r)
			if err != nil {
				WriteError(w, err)
				return
			}
			if sess.Cookie != "" {
				http.SetCookie(w, resolver.Cookie(sess.Cookie))
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

// RequestContext returns r's context annotated with the client IP and
// User-Agent for audit events.
func RequestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if ip := clientIP(r); ip != "" {
		ctx = cookieauth.WithClientIP(ctx, ip)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = cookieauth.WithUserAgent(ctx, ua)
	}
	return ctx
}

// WriteError writes the {statusCode, statusMessage} body for err.
func WriteError(w http.ResponseWriter, err error) {
	resp := cookieauth.ResponseFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
