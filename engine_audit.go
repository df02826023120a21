package authclient

import (
	"context"
	"errors"
	"time"

	"github.com/simstudio/authclient/cipher"
	"github.com/simstudio/authclient/storage"
)

const (
	auditEventValidationFailed       = "submit_validation_failed"
	auditEventSignInSuccess          = "sign_in_success"
	auditEventSignInFailure          = "sign_in_failure"
	auditEventVerificationRequired   = "verification_required"
	auditEventVerificationSendFailed = "verification_send_failed"
	auditEventThrottled              = "submit_throttled"
	auditEventDecryptFailed          = "decrypt_failed"
	auditEventSignOut                = "sign_out"
)

// AuditErrorCode is the stable error label written to AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrValidation       AuditErrorCode = "validation_failed"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrVerificationSend AuditErrorCode = "verification_send_failed"
	auditErrDecrypt          AuditErrorCode = "decrypt_failed"
	auditErrNavigation       AuditErrorCode = "navigation_failed"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

// emitAudit matches flows.AuditFunc. Subject is the normalized email; the password never
// reaches an audit event.
func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	err error,
	metadata map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: requestIDFromContext(ctx),
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrThrottled):
		return auditErrRateLimited
	case errors.Is(err, ErrVerificationSendFailed):
		return auditErrVerificationSend
	case errors.Is(err, ErrDecryptFailed),
		errors.Is(err, cipher.ErrMalformed):
		return auditErrDecrypt
	case errors.Is(err, ErrNavigationFailed):
		return auditErrNavigation
	case errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, storage.ErrUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
