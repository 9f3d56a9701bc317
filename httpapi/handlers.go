package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/middleware"
)

const maxBodyBytes = 64 << 10

type handler struct {
	engine *cookieauth.Engine
	logger *slog.Logger
	health func(context.Context) error
}

type sessionResponse struct {
	UserID    string  `json:"userId"`
	Email     string  `json:"email"`
	Firstname *string `json:"firstname"`
	Repaired  bool    `json:"repaired"`
}

func (h *handler) login(c *gin.Context) {
	var req cookieauth.LoginRequest
	if err := decodeStrict(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	value, err := h.engine.Login(middleware.RequestContext(c.Request), req)
	if err != nil {
		h.logFailure(c, "login", err)
		abortWithError(c, err)
		return
	}
	http.SetCookie(c.Writer, h.engine.Cookie(value))
	c.Status(http.StatusOK)
}

func (h *handler) register(c *gin.Context) {
	var req cookieauth.RegisterRequest
	if err := decodeStrict(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	value, err := h.engine.Register(middleware.RequestContext(c.Request), req)
	if err != nil {
		h.logFailure(c, "register", err)
		abortWithError(c, err)
		return
	}
	http.SetCookie(c.Writer, h.engine.Cookie(value))
	c.Status(http.StatusOK)
}

// logout clears the cookie whether or not it still verifies. The session is
// not resolved, so an expired access credential is not repaired on the way out.
func (h *handler) logout(c *gin.Context) {
	ctx := middleware.RequestContext(c.Request)
	userID := ""
	if id, err := h.engine.SessionSubject(c.Request); err == nil {
		userID = id
	}
	h.engine.Logout(ctx, userID)
	http.SetCookie(c.Writer, h.engine.ClearCookie())
	c.Status(http.StatusOK)
}

func (h *handler) session(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok {
		abortWithError(c, cookieauth.ErrTokensForbidden)
		return
	}
	resp := sessionResponse{UserID: sess.UserID, Repaired: sess.Repaired}
	if sess.Access != nil {
		resp.Email = sess.Access.Email
		resp.Firstname = sess.Access.Firstname
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) me(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok {
		abortWithError(c, cookieauth.ErrTokensForbidden)
		return
	}
	profile, err := h.engine.CurrentUser(c.Request.Context(), sess)
	if err != nil {
		h.logFailure(c, "current user", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) updateMe(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok {
		abortWithError(c, cookieauth.ErrTokensForbidden)
		return
	}
	var upd cookieauth.ProfileUpdate
	if err := decodeStrict(c, &upd); err != nil {
		abortWithError(c, err)
		return
	}

	updated, err := h.engine.UpdateProfile(c.Request.Context(), sess, upd)
	if err != nil {
		h.logFailure(c, "profile update", err)
		abortWithError(c, err)
		return
	}
	http.SetCookie(c.Writer, h.engine.Cookie(updated.Cookie))
	c.JSON(http.StatusOK, cookieauth.Profile{
		ID:        updated.UserID,
		Email:     updated.Access.Email,
		Firstname: updated.Access.Firstname,
	})
}

func (h *handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) logFailure(c *gin.Context, op string, err error) {
	kind := cookieauth.KindOf(err)
	level := slog.LevelDebug
	if kind == cookieauth.KindDirectory || kind == cookieauth.KindInternal {
		level = slog.LevelError
	}
	h.logger.Log(c.Request.Context(), level, op+" failed",
		"kind", kind.String(),
		"error", err,
		"request_id", c.GetString(RequestIDHeader),
	)
}

// decodeStrict reads a single JSON object and rejects unknown fields.
// Any decoding failure is reported as invalid input.
func decodeStrict(c *gin.Context, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", cookieauth.ErrInputInvalid, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body too large", cookieauth.ErrInputInvalid)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", cookieauth.ErrInputInvalid, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", cookieauth.ErrInputInvalid)
	}
	return nil
}
