package observation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type fakeObservationRepo struct {
	items        map[string]*domain.Observation
	setDoneCalls int
}

func (f *fakeObservationRepo) GetByID(_ context.Context, id string) (*domain.Observation, error) {
	obs, ok := f.items[id]
	if !ok {
		return nil, domain.ErrObservationNotFound
	}
	copied := *obs
	return &copied, nil
}

func (f *fakeObservationRepo) List(_ context.Context, filter repository.ObservationFilter) ([]domain.Observation, error) {
	var out []domain.Observation
	for _, obs := range f.items {
		if filter.AdvisorID != "" && obs.AdvisorID != filter.AdvisorID {
			continue
		}
		if filter.PendingOnly && obs.Done {
			continue
		}
		out = append(out, *obs)
	}
	return out, nil
}

func (f *fakeObservationRepo) Create(_ context.Context, obs *domain.Observation) (*domain.Observation, error) {
	copied := *obs
	copied.ID = "obs-new"
	copied.CreatedAt = time.Now()
	if f.items == nil {
		f.items = map[string]*domain.Observation{}
	}
	f.items[copied.ID] = &copied
	return &copied, nil
}

func (f *fakeObservationRepo) SetDone(_ context.Context, id string, done bool, doneAt *time.Time, doneBy string) error {
	f.setDoneCalls++
	obs, ok := f.items[id]
	if !ok {
		return domain.ErrObservationNotFound
	}
	obs.Done = done
	obs.DoneAt = doneAt
	obs.DoneBy = doneBy
	return nil
}

func (f *fakeObservationRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrObservationNotFound
	}
	delete(f.items, id)
	return nil
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

func seeded() *fakeObservationRepo {
	return &fakeObservationRepo{items: map[string]*domain.Observation{
		"o1": {ID: "o1", AdvisorID: "adv-1", Message: "call acme back", CreatedBy: "boss"},
		"o2": {ID: "o2", AdvisorID: "adv-2", Message: "review globex file", CreatedBy: "boss"},
	}}
}

func admins() *fakeUserRepo {
	return &fakeUserRepo{admins: map[string]bool{"boss": true}}
}

func TestCreateRequiresAdmin(t *testing.T) {
	uc := New(seeded(), admins(), nil, nil)

	obs := &domain.Observation{AdvisorID: "adv-1", Message: "follow up"}
	if _, err := uc.Create(context.Background(), obs, "adv-1"); !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}

	created, err := uc.Create(context.Background(), obs, "boss")
	if err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if created.CreatedBy != "boss" {
		t.Fatalf("author not recorded: %s", created.CreatedBy)
	}
}

func TestCreateRejectsEmptyMessage(t *testing.T) {
	uc := New(seeded(), admins(), nil, nil)

	_, err := uc.Create(context.Background(), &domain.Observation{AdvisorID: "adv-1", Message: "   "}, "boss")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.ErrCodeInvalid {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

func TestMarkDoneIdempotentBatch(t *testing.T) {
	repo := seeded()
	uc := New(repo, admins(), nil, nil)

	changed, err := uc.MarkDone(context.Background(), []string{"o1"}, "adv-1")
	if err != nil || changed != 1 {
		t.Fatalf("first completion: got %d, %v", changed, err)
	}
	if !repo.items["o1"].Done || repo.items["o1"].DoneBy != "adv-1" {
		t.Fatalf("completion not persisted: %+v", repo.items["o1"])
	}

	// Completing again changes nothing and is not an error.
	changed, err = uc.MarkDone(context.Background(), []string{"o1"}, "adv-1")
	if err != nil || changed != 0 {
		t.Fatalf("repeat completion: got %d, %v", changed, err)
	}
	if repo.setDoneCalls != 1 {
		t.Fatalf("expected 1 store write, got %d", repo.setDoneCalls)
	}
}

func TestMarkDonePartialSuccess(t *testing.T) {
	repo := seeded()
	uc := New(repo, admins(), nil, nil)

	changed, err := uc.MarkDone(context.Background(), []string{"o1", "o2", "ghost"}, "adv-1")
	if changed != 1 {
		t.Fatalf("expected 1 change, got %d", changed)
	}
	if err == nil {
		t.Fatal("expected joined error for foreign and missing ids")
	}
	if !errors.Is(err, domain.ErrNotOwner) || !errors.Is(err, domain.ErrObservationNotFound) {
		t.Fatalf("joined error missing causes: %v", err)
	}
	if repo.items["o2"].Done {
		t.Fatal("foreign observation was completed")
	}
}

func TestMarkDoneAdminCanCompleteAny(t *testing.T) {
	repo := seeded()
	uc := New(repo, admins(), nil, nil)

	changed, err := uc.MarkDone(context.Background(), []string{"o1", "o2"}, "boss")
	if err != nil || changed != 2 {
		t.Fatalf("admin batch completion: got %d, %v", changed, err)
	}
}

func TestReopenAdminOnly(t *testing.T) {
	repo := seeded()
	uc := New(repo, admins(), nil, nil)

	if _, err := uc.MarkDone(context.Background(), []string{"o1"}, "adv-1"); err != nil {
		t.Fatalf("setup completion failed: %v", err)
	}

	if err := uc.Reopen(context.Background(), "o1", "adv-1"); !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if err := uc.Reopen(context.Background(), "o1", "boss"); err != nil {
		t.Fatalf("admin reopen failed: %v", err)
	}
	if repo.items["o1"].Done || repo.items["o1"].DoneBy != "" {
		t.Fatalf("reopen did not clear completion: %+v", repo.items["o1"])
	}
}

func TestListForAdvisorPendingOnly(t *testing.T) {
	repo := seeded()
	uc := New(repo, admins(), nil, nil)

	if _, err := uc.MarkDone(context.Background(), []string{"o1"}, "adv-1"); err != nil {
		t.Fatalf("setup completion failed: %v", err)
	}

	pending, err := uc.ListForAdvisor(context.Background(), "adv-1", true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending items, got %d", len(pending))
	}

	all, err := uc.ListForAdvisor(context.Background(), "adv-1", false)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected 1 item, got %d, %v", len(all), err)
	}
}
