package cookieauth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/cookieauth/jwt"
	"github.com/MrEthical07/cookieauth/session"
)

const (
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventRegisterSuccess = "register_success"
	auditEventRegisterFailure = "register_failure"
	auditEventSessionRepaired = "session_repaired"
	auditEventSessionRejected = "session_rejected"
	auditEventProfileUpdated  = "profile_updated"
	auditEventProfileFailure  = "profile_update_failure"
	auditEventLogout          = "logout"
)

// AuditErrorCode is the stable error label recorded on failed audit events.
type AuditErrorCode string

const (
	auditErrInputInvalid       AuditErrorCode = "input_invalid"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrMissingCookie      AuditErrorCode = "missing_cookie"
	auditErrMalformedCookie    AuditErrorCode = "malformed_cookie"
	auditErrExpired            AuditErrorCode = "credential_expired"
	auditErrInvalidSignature   AuditErrorCode = "invalid_signature"
	auditErrMalformedToken     AuditErrorCode = "malformed_token"
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrUserMissing        AuditErrorCode = "user_missing"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrUnavailable        AuditErrorCode = "directory_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInputInvalid):
		return auditErrInputInvalid
	case errors.Is(err, errInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, session.ErrMissingCookie):
		return auditErrMissingCookie
	case errors.Is(err, session.ErrMalformed):
		return auditErrMalformedCookie
	case errors.Is(err, jwt.ErrExpired):
		return auditErrExpired
	case errors.Is(err, jwt.ErrInvalidSignature):
		return auditErrInvalidSignature
	case errors.Is(err, jwt.ErrMalformed):
		return auditErrMalformedToken
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrDirectoryIntegrity):
		return auditErrUserMissing
	case errors.Is(err, ErrEmailTaken):
		return auditErrDuplicate
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrDirectory):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeLatency(id MetricID, start time.Time) {
	if e == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, e.now().Sub(start))
}
