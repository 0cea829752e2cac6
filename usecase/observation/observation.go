package observation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
	"github.com/funneldesk/backend/usecase"
)

type UseCase struct {
	observations repository.ObservationRepository
	users        repository.UserRepository
	refresher    usecase.CredentialRefresher
	logger       *zap.Logger
}

func New(observations repository.ObservationRepository, users repository.UserRepository, refresher usecase.CredentialRefresher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		observations: observations,
		users:        users,
		refresher:    refresher,
		logger:       logger,
	}
}

// Create registers a directive for an advisor. Only admins may author
// observations.
func (uc *UseCase) Create(ctx context.Context, obs *domain.Observation, actorID string) (*domain.Observation, error) {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if obs == nil || strings.TrimSpace(obs.Message) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "observation message must not be empty")
	}
	if obs.AdvisorID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "observation must target an advisor")
	}
	obs.CreatedBy = actorID
	obs.Done = false
	obs.DoneAt = nil
	obs.DoneBy = ""

	var created *domain.Observation
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		created, opErr = uc.observations.Create(ctx, obs)
		return opErr
	})
	return created, err
}

// ListForAdvisor returns the advisor's own directives, optionally only the
// pending ones.
func (uc *UseCase) ListForAdvisor(ctx context.Context, advisorID string, pendingOnly bool) ([]domain.Observation, error) {
	filter := repository.ObservationFilter{AdvisorID: advisorID, PendingOnly: pendingOnly}
	var items []domain.Observation
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		items, opErr = uc.observations.List(ctx, filter)
		return opErr
	})
	return items, err
}

// ListAll returns directives across advisors. Admin only.
func (uc *UseCase) ListAll(ctx context.Context, filter repository.ObservationFilter, actorID string) ([]domain.Observation, error) {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	var items []domain.Observation
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		items, opErr = uc.observations.List(ctx, filter)
		return opErr
	})
	return items, err
}

// MarkDone completes the given directives. The targeted advisor or an admin
// may complete; completing an already-done directive is a no-op and not an
// error. Failures are joined while the count reports directives whose state
// actually changed.
func (uc *UseCase) MarkDone(ctx context.Context, ids []string, actorID string) (int, error) {
	admin, err := uc.users.IsAdmin(ctx, actorID)
	if err != nil {
		return 0, err
	}

	changed := 0
	var errs []error
	now := time.Now().UTC()
	for _, id := range ids {
		obs, err := uc.get(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("observation %s: %w", id, err))
			continue
		}
		if !admin && obs.AdvisorID != actorID {
			errs = append(errs, fmt.Errorf("observation %s: %w", id, domain.ErrNotOwner))
			continue
		}
		if !obs.MarkDone(actorID, now) {
			continue
		}
		err = usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
			return uc.observations.SetDone(ctx, id, true, obs.DoneAt, actorID)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("observation %s: %w", id, err))
			continue
		}
		changed++
	}
	return changed, errors.Join(errs...)
}

// Reopen clears a directive's completion. Admin only.
func (uc *UseCase) Reopen(ctx context.Context, id string, actorID string) error {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	obs, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	obs.Reopen()
	return usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		return uc.observations.SetDone(ctx, id, false, nil, "")
	})
}

// Delete removes a directive. Admin only.
func (uc *UseCase) Delete(ctx context.Context, id string, actorID string) error {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		return uc.observations.Delete(ctx, id)
	})
}

func (uc *UseCase) get(ctx context.Context, id string) (*domain.Observation, error) {
	var obs *domain.Observation
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		obs, opErr = uc.observations.GetByID(ctx, id)
		return opErr
	})
	return obs, err
}

func (uc *UseCase) requireAdmin(ctx context.Context, actorID string) error {
	admin, err := uc.users.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return domain.ErrAdminOnly
	}
	return nil
}
