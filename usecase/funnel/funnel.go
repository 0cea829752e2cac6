package funnel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
	"github.com/funneldesk/backend/usecase"
)

const aliasScanLimit = 10000

type UseCase struct {
	leads     repository.LeadRepository
	users     repository.UserRepository
	cache     repository.LeadCache
	recorder  usecase.TransitionRecorder
	refresher usecase.CredentialRefresher
	logger    *zap.Logger
}

func New(leads repository.LeadRepository, users repository.UserRepository, cache repository.LeadCache, recorder usecase.TransitionRecorder, refresher usecase.CredentialRefresher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		leads:     leads,
		users:     users,
		cache:     cache,
		recorder:  recorder,
		refresher: refresher,
		logger:    logger,
	}
}

// Edit pairs a lead id with a partial update for batch application.
type Edit struct {
	ID     string
	Update repository.LeadUpdate
}

func (uc *UseCase) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	var lead *domain.Lead
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		lead, opErr = uc.leads.GetByID(ctx, id)
		return opErr
	})
	return lead, err
}

// ListLeads serves a filtered listing, consulting the generation-keyed cache
// first. Cache failures degrade to a direct store read.
func (uc *UseCase) ListLeads(ctx context.Context, filter repository.LeadFilter) ([]domain.Lead, error) {
	fp := fingerprint(filter)
	gen := int64(-1)
	if uc.cache != nil {
		g, err := uc.cache.Generation(ctx)
		if err != nil {
			uc.logger.Debug("lead cache unavailable, reading store directly", zap.Error(err))
		} else {
			gen = g
			if leads, ok := uc.cache.Get(ctx, gen, fp); ok {
				return leads, nil
			}
		}
	}

	var leads []domain.Lead
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		leads, opErr = uc.leads.List(ctx, filter)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	if uc.cache != nil && gen >= 0 {
		uc.cache.Set(ctx, gen, fp, leads)
	}
	return leads, nil
}

// CreateLead registers a new lead owned by the actor. An admin may create on
// behalf of another advisor by presetting OwnerID and Advisor.
func (uc *UseCase) CreateLead(ctx context.Context, lead *domain.Lead, actorID string) (*domain.Lead, error) {
	if lead == nil {
		return nil, domain.ErrInvalidPayload
	}
	if lead.OwnerID == "" {
		lead.OwnerID = actorID
	}
	if lead.OwnerID != actorID {
		if err := uc.requireAdmin(ctx, actorID); err != nil {
			return nil, err
		}
	}
	if lead.Status == "" {
		lead.Status = domain.StatusApproach
	}
	if lead.CaptureDate.IsZero() {
		lead.CaptureDate = time.Now().UTC()
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Lead
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		created, opErr = uc.leads.Create(ctx, lead)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	uc.bump(ctx)
	return created, nil
}

// UpdateLead applies a partial edit to a lead owned by the actor. A status
// change is validated against the realized amount the lead would hold after
// the write, and recorded in the transition journal.
func (uc *UseCase) UpdateLead(ctx context.Context, id string, update repository.LeadUpdate, actorID string) (*domain.Lead, error) {
	if update.Empty() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "update carries no fields")
	}
	current, err := uc.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != actorID {
		return nil, domain.ErrNotOwner
	}
	if err := validateUpdate(current, update); err != nil {
		return nil, err
	}

	err = usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		return uc.leads.Update(ctx, id, update)
	})
	if err != nil {
		return nil, err
	}
	uc.bump(ctx)

	if update.Status != nil && *update.Status != current.Status {
		uc.record(ctx, domain.TransitionEvent{
			ID:         uuid.NewString(),
			LeadID:     id,
			AdvisorID:  current.OwnerID,
			ActorID:    actorID,
			FromStatus: current.Status,
			ToStatus:   *update.Status,
			OccurredAt: time.Now().UTC(),
		})
	}
	return uc.GetLead(ctx, id)
}

// BatchUpdate applies each edit independently. Edits that fail validation or
// hit a missing lead are skipped; the joined error reports every failure
// while the count reports how many edits were applied.
func (uc *UseCase) BatchUpdate(ctx context.Context, edits []Edit, actorID string) (int, error) {
	applied := 0
	var errs []error
	for _, edit := range edits {
		if _, err := uc.UpdateLead(ctx, edit.ID, edit.Update, actorID); err != nil {
			errs = append(errs, fmt.Errorf("lead %s: %w", edit.ID, err))
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}

// DeleteLeads removes the given leads. Ownership is checked per lead; an
// admin may delete any lead. Unknown ids are tolerated.
func (uc *UseCase) DeleteLeads(ctx context.Context, ids []string, actorID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	admin, err := uc.users.IsAdmin(ctx, actorID)
	if err != nil {
		return 0, err
	}
	allowed := ids
	if !admin {
		allowed = make([]string, 0, len(ids))
		for _, id := range ids {
			lead, err := uc.GetLead(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrLeadNotFound) {
					continue
				}
				return 0, err
			}
			if lead.OwnerID != actorID {
				return 0, domain.ErrNotOwner
			}
			allowed = append(allowed, id)
		}
		if len(allowed) == 0 {
			return 0, nil
		}
	}

	var deleted int
	err = usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		deleted, opErr = uc.leads.DeleteMany(ctx, allowed)
		return opErr
	})
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		uc.bump(ctx)
	}
	return deleted, nil
}

// AdvisorAliases maps display aliases to owner identities, derived from
// recent leads.
func (uc *UseCase) AdvisorAliases(ctx context.Context) (map[string]string, error) {
	var aliases map[string]string
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		aliases, opErr = uc.leads.AdvisorAliases(ctx, aliasScanLimit)
		return opErr
	})
	return aliases, err
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

func (uc *UseCase) bump(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Bump(ctx); err != nil {
		uc.logger.Warn("failed to bump lead cache generation", zap.Error(err))
	}
}

func (uc *UseCase) record(ctx context.Context, event domain.TransitionEvent) {
	if uc.recorder == nil {
		return
	}
	if err := uc.recorder.Record(ctx, event); err != nil {
		uc.logger.Error("failed to record status transition",
			zap.String("lead_id", event.LeadID),
			zap.Error(err))
	}
}

// validateUpdate checks the fields an edit touches against the lead state
// after the write.
func validateUpdate(current *domain.Lead, update repository.LeadUpdate) error {
	if update.EstimatedAmount != nil && update.EstimatedAmount.IsNegative() {
		return domain.NewError(domain.ErrCodeInvalid, "estimated amount must not be negative")
	}
	if update.Probability != nil && (*update.Probability < 0 || *update.Probability > 100) {
		return domain.NewError(domain.ErrCodeInvalid, "probability must be between 0 and 100")
	}
	if update.ClientType != nil && !validClientType(*update.ClientType) {
		return domain.NewError(domain.ErrCodeInvalid, "unknown client type "+*update.ClientType)
	}
	realized := current.RealizedAmount
	if update.RealizedAmount != nil {
		realized = update.RealizedAmount
	}
	if update.Status != nil {
		return domain.ValidateTransition(current.Status, *update.Status, realized)
	}
	if current.Status == domain.StatusWon && update.RealizedAmount != nil {
		return domain.ValidateTransition(current.Status, current.Status, realized)
	}
	return nil
}

func validClientType(ct string) bool {
	for _, known := range domain.ClientTypes() {
		if ct == known {
			return true
		}
	}
	return false
}

// fingerprint flattens a filter into a stable cache key component.
func fingerprint(filter repository.LeadFilter) string {
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.Format("2006-01-02")
	}
	if filter.DateToExclusive != nil {
		to = filter.DateToExclusive.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%d",
		filter.OwnerID, filter.Advisor, filter.Status, filter.ClientType,
		filter.Product, from, to, filter.Limit)
}
