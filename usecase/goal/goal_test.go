package goal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/funneldesk/backend/domain"
)

type fakeGoalRepo struct {
	goals       map[string]domain.MonthlyGoal
	upsertCalls int
	failWith    error
	failTimes   int
}

func (f *fakeGoalRepo) tick() error {
	if f.failTimes > 0 {
		f.failTimes--
		return f.failWith
	}
	return nil
}

func (f *fakeGoalRepo) key(advisorID string, period time.Time) string {
	return advisorID + "|" + period.Format("2006-01")
}

func (f *fakeGoalRepo) Upsert(_ context.Context, goal *domain.MonthlyGoal) error {
	f.upsertCalls++
	if err := f.tick(); err != nil {
		return err
	}
	goal.UpdatedAt = time.Now()
	if f.goals == nil {
		f.goals = map[string]domain.MonthlyGoal{}
	}
	f.goals[f.key(goal.AdvisorID, goal.Period)] = *goal
	return nil
}

func (f *fakeGoalRepo) Get(_ context.Context, advisorID string, period time.Time) (*domain.MonthlyGoal, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	goal, ok := f.goals[f.key(advisorID, period)]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	return &goal, nil
}

func (f *fakeGoalRepo) ListForPeriod(_ context.Context, period time.Time) ([]domain.MonthlyGoal, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	var out []domain.MonthlyGoal
	for _, goal := range f.goals {
		if goal.Period.Equal(period) {
			out = append(out, goal)
		}
	}
	return out, nil
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

func TestUpsertAdminOnly(t *testing.T) {
	repo := &fakeGoalRepo{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil)

	goal := &domain.MonthlyGoal{
		AdvisorID: "adv-1",
		Period:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:    amount("5000"),
	}
	if _, err := uc.Upsert(context.Background(), goal, "adv-1"); !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected admin gate, got %v", err)
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("expected no store call, got %d", repo.upsertCalls)
	}

	if _, err := uc.Upsert(context.Background(), goal, "boss"); err != nil {
		t.Fatalf("admin upsert failed: %v", err)
	}
}

func TestUpsertNormalizesPeriod(t *testing.T) {
	repo := &fakeGoalRepo{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil)

	saved, err := uc.Upsert(context.Background(), &domain.MonthlyGoal{
		AdvisorID: "adv-1",
		Period:    time.Date(2026, time.March, 17, 14, 30, 0, 0, time.UTC),
		Amount:    amount("5000"),
	}, "boss")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !saved.Period.Equal(want) {
		t.Fatalf("expected period %v, got %v", want, saved.Period)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be set by the store")
	}

	got, err := uc.Get(context.Background(), "adv-1", time.Date(2026, time.March, 28, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("get after upsert failed: %v", err)
	}
	if !got.Amount.Equal(amount("5000")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestUpsertRejectsNegativeAmount(t *testing.T) {
	repo := &fakeGoalRepo{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil)

	_, err := uc.Upsert(context.Background(), &domain.MonthlyGoal{
		AdvisorID: "adv-1",
		Period:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:    amount("-1"),
	}, "boss")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("expected no store call, got %d", repo.upsertCalls)
	}
}

func TestUpsertCredentialExpiryRetriesOnce(t *testing.T) {
	expired := domain.WrapError(domain.ErrCodeUnauthorized, "store auth failed", domain.ErrCredentialExpired)
	repo := &fakeGoalRepo{failWith: expired, failTimes: 1}
	refresher := &fakeRefresher{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, refresher, nil)

	saved, err := uc.Upsert(context.Background(), &domain.MonthlyGoal{
		AdvisorID: "adv-1",
		Period:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:    amount("5000"),
	}, "boss")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected saved goal")
	}
	if refresher.calls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refresher.calls)
	}
	if repo.upsertCalls != 2 {
		t.Fatalf("expected two store attempts, got %d", repo.upsertCalls)
	}
}

func TestListForPeriodScopedToMonth(t *testing.T) {
	repo := &fakeGoalRepo{}
	uc := New(repo, &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil, nil)

	for _, g := range []domain.MonthlyGoal{
		{AdvisorID: "adv-1", Period: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), Amount: amount("5000")},
		{AdvisorID: "adv-2", Period: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), Amount: amount("3000")},
		{AdvisorID: "adv-1", Period: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), Amount: amount("9000")},
	} {
		goal := g
		if _, err := uc.Upsert(context.Background(), &goal, "boss"); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	goals, err := uc.ListForPeriod(context.Background(), time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals for March, got %d", len(goals))
	}
}
