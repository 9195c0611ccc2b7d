package models

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, Moscow)
}

func testEvent(id, summary string, start time.Time) *Event {
	return &Event{
		ID:      id,
		Summary: summary,
		Start:   start,
		End:     start.Add(time.Hour),
		Status:  "confirmed",
		Etag:    `"etag-1"`,
		Created: start.Add(-30 * 24 * time.Hour),
		Updated: start.Add(-24 * time.Hour),
	}
}

func TestUpsertEventIsIdempotent(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)
	ctx := context.Background()
	event := testEvent("e1", "Dozen 6am", fixedNow().Add(6*time.Hour))

	if err := repo.UpsertEvent(ctx, event); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	first, err := repo.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get after first upsert failed: %v", err)
	}

	if err := repo.UpsertEvent(ctx, event); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	second, err := repo.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get after second upsert failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated upsert changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestUpsertEventPreservesAttendees(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)
	ctx := context.Background()
	event := testEvent("e1", "Dozen 6am", fixedNow().Add(6*time.Hour))

	if err := repo.UpsertEvent(ctx, event); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	for _, username := range []string{"alice", "bob"} {
		if outcome, err := repo.AddAttendee(ctx, "e1", username); err != nil || outcome != Registered {
			t.Fatalf("AddAttendee(%s) = %v, %v", username, outcome, err)
		}
	}

	updated := testEvent("e1", "Dozen 7am", fixedNow().Add(7*time.Hour))
	if err := repo.UpsertEvent(ctx, updated); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}

	got, err := repo.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Summary != "Dozen 7am" {
		t.Errorf("summary not updated: %q", got.Summary)
	}
	if !reflect.DeepEqual(got.Attendees, []string{"alice", "bob"}) {
		t.Errorf("attendees clobbered by upsert: %v", got.Attendees)
	}
}

func TestAddAttendeeExclusiveUnderConcurrency(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)
	ctx := context.Background()
	if err := repo.UpsertEvent(ctx, testEvent("e1", "Dozen 6am", fixedNow().Add(6*time.Hour))); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	const callers = 50
	var wg sync.WaitGroup
	outcomes := make(chan RegistrationOutcome, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := repo.AddAttendee(ctx, "e1", "alice")
			if err != nil {
				t.Errorf("AddAttendee failed: %v", err)
				return
			}
			outcomes <- outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	registered := 0
	for outcome := range outcomes {
		if outcome == Registered {
			registered++
		}
	}
	if registered != 1 {
		t.Errorf("want exactly one Registered outcome, got %d", registered)
	}

	got, err := repo.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	count := 0
	for _, attendee := range got.Attendees {
		if attendee == "alice" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("alice appears %d times in attendee set %v", count, got.Attendees)
	}
}

func TestAddAttendeeUnknownEvent(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)

	outcome, err := repo.AddAttendee(context.Background(), "ghost", "alice")
	if err != nil {
		t.Fatalf("AddAttendee failed: %v", err)
	}
	if outcome != EventNotFound {
		t.Errorf("want EventNotFound, got %v", outcome)
	}
}

func TestListUpcomingOrderedFilteredAndCapped(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)
	ctx := context.Background()
	now := fixedNow()

	past := testEvent("past", "Last week", now.Add(-7*24*time.Hour))
	cancelled := testEvent("gone", "Dozen cancelled", now.Add(2*time.Hour))
	cancelled.Status = StatusCancelled
	later := testEvent("e3", "Evening run", now.Add(36*time.Hour))
	soon := testEvent("e1", "Dozen 6am", now.Add(6*time.Hour))
	middle := testEvent("e2", "Нескучный сад", now.Add(12*time.Hour))

	for _, event := range []*Event{past, cancelled, later, soon, middle} {
		if err := repo.UpsertEvent(ctx, event); err != nil {
			t.Fatalf("upsert %s failed: %v", event.ID, err)
		}
	}

	events, err := repo.ListUpcoming(ctx, 2)
	if err != nil {
		t.Fatalf("ListUpcoming failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].ID != "e1" || events[1].ID != "e2" {
		t.Errorf("wrong order: %s, %s", events[0].ID, events[1].ID)
	}
}

func TestGetEventNotFound(t *testing.T) {
	repo := NewMemoryRepo(fixedNow)

	if _, err := repo.GetEvent(context.Background(), "ghost"); err != ErrEventNotFound {
		t.Errorf("want ErrEventNotFound, got %v", err)
	}
}
