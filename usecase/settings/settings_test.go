package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/funneldesk/backend/domain"
)

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

func TestUpdateAdminOnly(t *testing.T) {
	store := NewStore(domain.DefaultThresholds(), &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil)

	_, err := store.Update(context.Background(), domain.Thresholds{RedMax: 0.2, YellowMax: 0.4}, "adv-1")
	if !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if got := store.Thresholds(); got != domain.DefaultThresholds() {
		t.Fatalf("thresholds changed by non-admin: %+v", got)
	}

	updated, err := store.Update(context.Background(), domain.Thresholds{RedMax: 0.2, YellowMax: 0.4}, "boss")
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.RedMax != 0.2 || updated.YellowMax != 0.4 {
		t.Fatalf("unexpected thresholds %+v", updated)
	}
	if store.Thresholds() != updated {
		t.Fatal("stored value differs from returned value")
	}
}

func TestUpdateClampsOutOfRangeValues(t *testing.T) {
	store := NewStore(domain.DefaultThresholds(), &fakeUserRepo{admins: map[string]bool{"boss": true}}, nil)

	updated, err := store.Update(context.Background(), domain.Thresholds{RedMax: 2.0, YellowMax: 0.1}, "boss")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.RedMax > 0.9 {
		t.Fatalf("red band not clamped: %v", updated.RedMax)
	}
	if updated.YellowMax < updated.RedMax {
		t.Fatalf("band order violated: %+v", updated)
	}
}

func TestNewStoreClampsInitialValue(t *testing.T) {
	store := NewStore(domain.Thresholds{RedMax: -1, YellowMax: 5}, &fakeUserRepo{}, nil)

	got := store.Thresholds()
	if got.RedMax < 0 || got.YellowMax > 0.95 {
		t.Fatalf("initial thresholds not clamped: %+v", got)
	}
}
