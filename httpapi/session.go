package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/middleware"
)

const sessionKey = "cookieauth.session"

// RequireSession is the gin form of middleware.Guard. The resolved session is
// available through SessionFrom and middleware.SessionFromContext.
func RequireSession(engine *cookieauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := middleware.RequestContext(c.Request)
		sess, err := engine.ResolveSession(ctx, c.Request)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if sess.Cookie != "" {
			http.SetCookie(c.Writer, engine.Cookie(sess.Cookie))
		}

		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(middleware.WithSession(ctx, sess))
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(c *gin.Context) (*cookieauth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*cookieauth.Session)
	return sess, ok && sess != nil
}

func abortWithError(c *gin.Context, err error) {
	resp := cookieauth.ResponseFor(err)
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}
