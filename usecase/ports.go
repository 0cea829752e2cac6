package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
)

// TransitionRecorder abstracts the audit journal so use cases stay storage-agnostic.
type TransitionRecorder interface {
	Record(ctx context.Context, event domain.TransitionEvent) error
}

// CredentialRefresher re-establishes store credentials after they expire
// mid-session, typically by forcing the connection pool to re-authenticate.
type CredentialRefresher interface {
	Refresh(ctx context.Context) error
}

// WithCredentialRetry runs op and, if it fails because the store credential
// expired, refreshes the credential and retries op exactly once. Any other
// failure, including a failure of the retry itself, is returned as-is.
func WithCredentialRetry(ctx context.Context, refresher CredentialRefresher, logger *zap.Logger, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil || !errors.Is(err, domain.ErrCredentialExpired) {
		return err
	}
	if refresher == nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Warn("store credential expired, refreshing and retrying once", zap.Error(err))
	if refreshErr := refresher.Refresh(ctx); refreshErr != nil {
		logger.Error("credential refresh failed", zap.Error(refreshErr))
		return err
	}
	return op(ctx)
}
