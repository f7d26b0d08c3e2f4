package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/domain"
)

// SessionValidator resolves opaque session tokens into users by asking
// the backend. One best-effort call per request, no retries.
type SessionValidator struct {
	backend *backend.Client
	logger  *zap.Logger
}

// NewSessionValidator wires the validator.
func NewSessionValidator(client *backend.Client, logger *zap.Logger) *SessionValidator {
	return &SessionValidator{backend: client, logger: logger}
}

// Validate returns the user a token belongs to, or nil when the token
// is invalid or the backend is unreachable. A failure here never aborts
// the request pipeline, so no error is surfaced.
func (v *SessionValidator) Validate(ctx context.Context, token string) *domain.SessionUser {
	if token == "" {
		return nil
	}
	user, err := v.backend.CurrentUser(ctx, token)
	if err != nil {
		if status := backend.StatusOf(err); status != 0 {
			v.log().Debug("session rejected by backend", zap.Int("status", status))
		} else {
			v.log().Warn("session validation unavailable", zap.Error(err))
		}
		return nil
	}
	return user
}

func (v *SessionValidator) log() *zap.Logger {
	if v != nil && v.logger != nil {
		return v.logger
	}
	return zap.L()
}
