package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/funneldesk/backend/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), "transitions")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func event(id string, at time.Time) domain.TransitionEvent {
	return domain.TransitionEvent{
		ID:         id,
		LeadID:     "lead-1",
		AdvisorID:  "adv-1",
		ActorID:    "adv-1",
		FromStatus: domain.StatusProposal,
		ToStatus:   domain.StatusWon,
		OccurredAt: at,
	}
}

func TestAppendAndBatchOrdered(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	// Insert out of order; the cursor must return journal order.
	for _, e := range []domain.TransitionEvent{
		event("b", base.Add(2 * time.Minute)),
		event("a", base),
		event("c", base.Add(5 * time.Minute)),
	} {
		if err := store.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := store.Batch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ID != "a" || events[1].ID != "b" || events[2].ID != "c" {
		t.Fatalf("events out of order: %s %s %s", events[0].ID, events[1].ID, events[2].ID)
	}
}

func TestBatchRespectsLimit(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.Append(event(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := store.Batch(2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestRemoveDrainsEvents(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().UTC()
	first := event("a", base)
	second := event("b", base.Add(time.Second))
	for _, e := range []domain.TransitionEvent{first, second} {
		if err := store.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := store.Remove([]domain.TransitionEvent{first}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("expected 1 remaining event, got %d", size)
	}

	events, err := store.Batch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(events) != 1 || events[0].ID != "b" {
		t.Fatalf("wrong survivor: %+v", events)
	}
}

func TestAppendDefaultsTimestamp(t *testing.T) {
	store := openTestStore(t)
	e := event("a", time.Time{})
	if err := store.Append(e); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := store.Batch(1)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(events) != 1 || events[0].OccurredAt.IsZero() {
		t.Fatalf("timestamp not defaulted: %+v", events)
	}
}
