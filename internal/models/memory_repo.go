package models

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-process EventRepo with the same semantics as the
// MongoDB one. It backs local development runs and the test suite.
type MemoryRepo struct {
	mu     sync.Mutex
	events map[string]*Event
	now    func() time.Time
}

func NewMemoryRepo(now func() time.Time) *MemoryRepo {
	if now == nil {
		now = func() time.Time { return time.Now().In(Moscow) }
	}
	return &MemoryRepo{
		events: make(map[string]*Event),
		now:    now,
	}
}

func (m *MemoryRepo) UpsertEvent(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyEvent(event)
	if existing, ok := m.events[event.ID]; ok {
		stored.Attendees = existing.Attendees
	} else {
		stored.Attendees = []string{}
	}
	m.events[event.ID] = stored
	return nil
}

func (m *MemoryRepo) AddAttendee(ctx context.Context, eventID, username string) (RegistrationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return EventNotFound, nil
	}
	for _, attendee := range event.Attendees {
		if attendee == username {
			return AlreadyRegistered, nil
		}
	}
	event.Attendees = append(event.Attendees, username)
	return Registered, nil
}

func (m *MemoryRepo) ListUpcoming(ctx context.Context, limit int) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var events []*Event
	for _, event := range m.events {
		if event.Start.Before(now) || event.Cancelled() {
			continue
		}
		events = append(events, copyEvent(event))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MemoryRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return copyEvent(event), nil
}

func copyEvent(event *Event) *Event {
	clone := *event
	clone.Attendees = append([]string(nil), event.Attendees...)
	return &clone
}
