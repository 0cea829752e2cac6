package funnel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type fakeLeadRepo struct {
	leads       map[string]*domain.Lead
	updateCalls int
	listCalls   int
	failWith    error
	failTimes   int
}

func (f *fakeLeadRepo) tick() error {
	if f.failTimes > 0 {
		f.failTimes--
		return f.failWith
	}
	return nil
}

func (f *fakeLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	lead, ok := f.leads[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeLeadRepo) List(_ context.Context, _ repository.LeadFilter) ([]domain.Lead, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	f.listCalls++
	out := make([]domain.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, *lead)
	}
	return out, nil
}

func (f *fakeLeadRepo) Create(_ context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	copied := *lead
	copied.ID = "lead-" + copied.Client
	copied.CreatedAt = time.Now()
	if f.leads == nil {
		f.leads = map[string]*domain.Lead{}
	}
	f.leads[copied.ID] = &copied
	return &copied, nil
}

func (f *fakeLeadRepo) Update(_ context.Context, id string, update repository.LeadUpdate) error {
	if err := f.tick(); err != nil {
		return err
	}
	f.updateCalls++
	lead, ok := f.leads[id]
	if !ok {
		return domain.ErrLeadNotFound
	}
	if update.Status != nil {
		lead.Status = *update.Status
	}
	if update.RealizedAmount != nil {
		lead.RealizedAmount = update.RealizedAmount
	}
	if update.Probability != nil {
		lead.Probability = update.Probability
	}
	if update.Note != nil {
		lead.Note = *update.Note
	}
	return nil
}

func (f *fakeLeadRepo) DeleteMany(_ context.Context, ids []string) (int, error) {
	if err := f.tick(); err != nil {
		return 0, err
	}
	deleted := 0
	for _, id := range ids {
		if _, ok := f.leads[id]; ok {
			delete(f.leads, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeLeadRepo) AdvisorAliases(_ context.Context, _ int) (map[string]string, error) {
	aliases := map[string]string{}
	for _, lead := range f.leads {
		aliases[lead.Advisor] = lead.OwnerID
	}
	return aliases, nil
}

type fakeUserRepo struct {
	admins map[string]bool
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) IsAdmin(_ context.Context, id string) (bool, error) {
	return f.admins[id], nil
}

type fakeRecorder struct {
	events []domain.TransitionEvent
}

func (f *fakeRecorder) Record(_ context.Context, event domain.TransitionEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) Refresh(_ context.Context) error {
	f.calls++
	return nil
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seededRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: map[string]*domain.Lead{
		"l1": {
			ID:              "l1",
			OwnerID:         "adv-1",
			Advisor:         "ana",
			Client:          "acme",
			Status:          domain.StatusProposal,
			EstimatedAmount: amount("1000"),
		},
	}}
}

func TestUpdateLeadWonWithoutRealizedRejected(t *testing.T) {
	zero := decimal.Zero
	won := domain.StatusWon

	cases := []struct {
		name     string
		realized *decimal.Decimal
	}{
		{"missing", nil},
		{"zero", &zero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := seededRepo()
			uc := New(repo, &fakeUserRepo{}, nil, nil, nil, nil)

			_, err := uc.UpdateLead(context.Background(), "l1", repository.LeadUpdate{
				Status:         &won,
				RealizedAmount: tc.realized,
			}, "adv-1")
			if err == nil {
				t.Fatal("expected validation error")
			}
			var derr *domain.Error
			if !errors.As(err, &derr) || derr.Code != domain.ErrCodeInvalid {
				t.Fatalf("expected INVALID, got %v", err)
			}
			if repo.updateCalls != 0 {
				t.Fatalf("store write happened despite rejection: %d calls", repo.updateCalls)
			}
			if repo.leads["l1"].Status != domain.StatusProposal {
				t.Fatalf("lead status changed to %s", repo.leads["l1"].Status)
			}
		})
	}
}

func TestUpdateLeadWonRecordsTransition(t *testing.T) {
	repo := seededRepo()
	recorder := &fakeRecorder{}
	uc := New(repo, &fakeUserRepo{}, nil, recorder, nil, nil)

	won := domain.StatusWon
	realized := amount("900")
	lead, err := uc.UpdateLead(context.Background(), "l1", repository.LeadUpdate{
		Status:         &won,
		RealizedAmount: &realized,
	}, "adv-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if lead.Status != domain.StatusWon {
		t.Fatalf("expected won, got %s", lead.Status)
	}
	if len(recorder.events) != 1 {
		t.Fatalf("expected 1 transition event, got %d", len(recorder.events))
	}
	event := recorder.events[0]
	if event.FromStatus != domain.StatusProposal || event.ToStatus != domain.StatusWon {
		t.Fatalf("unexpected transition %s -> %s", event.FromStatus, event.ToStatus)
	}
	if event.ActorID != "adv-1" {
		t.Fatalf("unexpected actor %s", event.ActorID)
	}
}

func TestUpdateLeadBackwardMoveAllowed(t *testing.T) {
	repo := seededRepo()
	uc := New(repo, &fakeUserRepo{}, nil, nil, nil, nil)

	approach := domain.StatusApproach
	lead, err := uc.UpdateLead(context.Background(), "l1", repository.LeadUpdate{Status: &approach}, "adv-1")
	if err != nil {
		t.Fatalf("backward move rejected: %v", err)
	}
	if lead.Status != domain.StatusApproach {
		t.Fatalf("expected approach, got %s", lead.Status)
	}
}

func TestUpdateLeadOwnershipEnforced(t *testing.T) {
	repo := seededRepo()
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil, nil, nil)

	note := "poached"
	for _, actor := range []string{"adv-2", "boss"} {
		_, err := uc.UpdateLead(context.Background(), "l1", repository.LeadUpdate{Note: &note}, actor)
		if !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("actor %s: expected ErrNotOwner, got %v", actor, err)
		}
	}
}

func TestCreateLeadOnBehalfRequiresAdmin(t *testing.T) {
	repo := &fakeLeadRepo{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil, nil, nil)

	lead := &domain.Lead{OwnerID: "adv-1", Advisor: "ana", Client: "acme", Status: domain.StatusApproach}
	if _, err := uc.CreateLead(context.Background(), lead, "adv-2"); !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}

	created, err := uc.CreateLead(context.Background(), lead, "boss")
	if err != nil {
		t.Fatalf("admin create on behalf failed: %v", err)
	}
	if created.OwnerID != "adv-1" {
		t.Fatalf("owner not preserved: %s", created.OwnerID)
	}
}

func TestCredentialExpiryRetriesOnce(t *testing.T) {
	expired := domain.WrapError(domain.ErrCodeUnauthorized, "store auth failed", domain.ErrCredentialExpired)
	repo := seededRepo()
	repo.failWith = expired
	repo.failTimes = 1
	refresher := &fakeRefresher{}
	uc := New(repo, &fakeUserRepo{}, nil, nil, refresher, nil)

	lead, err := uc.GetLead(context.Background(), "l1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if lead.ID != "l1" {
		t.Fatalf("unexpected lead %s", lead.ID)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refresher.calls)
	}
}

func TestCredentialExpiryDoesNotLoop(t *testing.T) {
	expired := domain.WrapError(domain.ErrCodeUnauthorized, "store auth failed", domain.ErrCredentialExpired)
	repo := seededRepo()
	repo.failWith = expired
	repo.failTimes = 10
	refresher := &fakeRefresher{}
	uc := New(repo, &fakeUserRepo{}, nil, nil, refresher, nil)

	if _, err := uc.GetLead(context.Background(), "l1"); !errors.Is(err, domain.ErrCredentialExpired) {
		t.Fatalf("expected credential error to surface, got %v", err)
	}
	if refresher.calls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refresher.calls)
	}
}

func TestBatchUpdatePartialSuccess(t *testing.T) {
	repo := seededRepo()
	repo.leads["l2"] = &domain.Lead{
		ID:              "l2",
		OwnerID:         "adv-1",
		Advisor:         "ana",
		Client:          "globex",
		Status:          domain.StatusApproach,
		EstimatedAmount: amount("500"),
	}
	uc := New(repo, &fakeUserRepo{}, nil, nil, nil, nil)

	docs := domain.StatusDocumentation
	won := domain.StatusWon
	applied, err := uc.BatchUpdate(context.Background(), []Edit{
		{ID: "l1", Update: repository.LeadUpdate{Status: &docs}},
		{ID: "l2", Update: repository.LeadUpdate{Status: &won}}, // no realized amount
		{ID: "missing", Update: repository.LeadUpdate{Status: &docs}},
	}, "adv-1")
	if applied != 1 {
		t.Fatalf("expected 1 applied edit, got %d", applied)
	}
	if err == nil {
		t.Fatal("expected joined error for failed edits")
	}
	if repo.leads["l1"].Status != domain.StatusDocumentation {
		t.Fatalf("valid edit not applied: %s", repo.leads["l1"].Status)
	}
	if repo.leads["l2"].Status != domain.StatusApproach {
		t.Fatalf("invalid edit applied: %s", repo.leads["l2"].Status)
	}
}

func TestDeleteLeadsToleratesUnknownIDs(t *testing.T) {
	repo := seededRepo()
	uc := New(repo, &fakeUserRepo{}, nil, nil, nil, nil)

	deleted, err := uc.DeleteLeads(context.Background(), []string{"l1", "ghost"}, "adv-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}

	deleted, err = uc.DeleteLeads(context.Background(), nil, "adv-1")
	if err != nil || deleted != 0 {
		t.Fatalf("empty delete: got %d, %v", deleted, err)
	}
}
