package handlers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/traininginparks/trainbot/internal/analytics"
	"github.com/traininginparks/trainbot/internal/models"
	"github.com/traininginparks/trainbot/internal/notify"
	"github.com/traininginparks/trainbot/internal/venues"
)

type sentSelection struct {
	text  string
	items []SelectionItem
}

type fakeBus struct {
	mu         sync.Mutex
	texts      []string
	menus      []string
	selections []sentSelection
	venues     []venues.Venue
	edits      []string
	answered   []string
}

func (b *fakeBus) SendText(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, text)
	return nil
}

func (b *fakeBus) SendMenu(ctx context.Context, chatID int64, text string, buttons []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menus = append(b.menus, text)
	return nil
}

func (b *fakeBus) SendSelection(ctx context.Context, chatID int64, text string, items []SelectionItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selections = append(b.selections, sentSelection{text: text, items: items})
	return nil
}

func (b *fakeBus) SendVenue(ctx context.Context, chatID int64, venue venues.Venue) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.venues = append(b.venues, venue)
	return nil
}

func (b *fakeBus) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits = append(b.edits, text)
	return nil
}

func (b *fakeBus) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answered = append(b.answered, callbackID)
	return nil
}

type fakeMailer struct {
	senders []notify.Sender
	texts   []string
}

func (m *fakeMailer) SendFeedback(sender notify.Sender, text string) error {
	m.senders = append(m.senders, sender)
	m.texts = append(m.texts, text)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, models.Moscow)
}

func dozenEvent() *models.Event {
	start := time.Date(2024, 6, 1, 6, 0, 0, 0, models.Moscow)
	return &models.Event{
		ID:      "e1",
		Summary: "Dozen 6am",
		Start:   start,
		End:     start.Add(time.Hour),
		Status:  "confirmed",
		Etag:    `"1"`,
		Created: start.Add(-time.Hour),
		Updated: start.Add(-time.Hour),
	}
}

func testVenues() venues.Table {
	return venues.Table{
		{Keyword: "dozen", Latitude: 55.71, Longitude: 37.66, Title: "CrossFit Dozen", Address: "Ленинская Слобода, 19"},
		{Keyword: "нескучный", Latitude: 55.72, Longitude: 37.59, Title: "Нескучный сад", Address: "Ленинский проспект, 30"},
	}
}

func newTestHandler(t *testing.T, events ...*models.Event) (*BotHandler, *fakeBus, *fakeMailer, models.EventRepo) {
	t.Helper()
	repo := models.NewMemoryRepo(fixedNow)
	for _, event := range events {
		if err := repo.UpsertEvent(context.Background(), event); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}
	bus := &fakeBus{}
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewBotHandler(logger, repo, bus, testVenues(), analytics.NoopTracker{}, mailer, 5, 5)
	return h, bus, mailer, repo
}

func command(name, args string) Command {
	return Command{
		Name:      name,
		ChatID:    42,
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
		Args:      args,
		Text:      "/" + name,
	}
}

func TestStartSendsWelcomeMenu(t *testing.T) {
	h, bus, _, _ := newTestHandler(t)

	h.HandleCommand(context.Background(), command("start", ""))

	if len(bus.menus) != 1 || bus.menus[0] != msgWelcome {
		t.Errorf("menus = %v", bus.menus)
	}
}

func TestTrainListsScheduleAndSelection(t *testing.T) {
	h, bus, _, _ := newTestHandler(t, dozenEvent())

	h.HandleCommand(context.Background(), command("train", ""))

	if len(bus.texts) != 2 {
		t.Fatalf("texts = %v", bus.texts)
	}
	if bus.texts[0] != msgScheduleHeader {
		t.Errorf("header = %q", bus.texts[0])
	}
	if bus.texts[1] != "2024-06-01: Dozen 6am с 06:00 до 07:00" {
		t.Errorf("schedule line = %q", bus.texts[1])
	}
	if len(bus.selections) != 1 {
		t.Fatalf("selections = %v", bus.selections)
	}
	sel := bus.selections[0]
	if sel.text != msgPickTraining || len(sel.items) != 1 || sel.items[0].Payload != "e1" {
		t.Errorf("selection = %+v", sel)
	}
	if sel.items[0].Label != "Dozen 6am: 2024-06-01" {
		t.Errorf("label = %q", sel.items[0].Label)
	}
}

func TestTrainEmptySchedule(t *testing.T) {
	h, bus, _, _ := newTestHandler(t)

	h.HandleCommand(context.Background(), command("train", ""))

	if len(bus.texts) != 1 || bus.texts[0] != msgNoTrainings {
		t.Errorf("texts = %v", bus.texts)
	}
	if len(bus.selections) != 0 {
		t.Errorf("selection sent for empty schedule")
	}
}

func TestCallbackRegistersAndSendsVenueOnce(t *testing.T) {
	h, bus, _, _ := newTestHandler(t, dozenEvent())
	cb := Callback{ID: "cb1", ChatID: 42, MessageID: 7, Username: "alice", Payload: "e1"}

	h.HandleCallback(context.Background(), cb)

	if len(bus.edits) != 1 || bus.edits[0] != msgRegistered {
		t.Errorf("edits = %v", bus.edits)
	}
	if len(bus.texts) != 1 || bus.texts[0] != "Ждем тебя 2024-06-01 с 06:00 по адресу:" {
		t.Errorf("texts = %v", bus.texts)
	}
	if len(bus.venues) != 1 || bus.venues[0].Title != "CrossFit Dozen" {
		t.Errorf("venues = %v", bus.venues)
	}
	if len(bus.answered) != 1 {
		t.Errorf("callback not acknowledged")
	}

	// Second selection of the same event by the same user.
	h.HandleCallback(context.Background(), cb)

	if len(bus.venues) != 1 {
		t.Errorf("duplicate registration sent a second venue card")
	}
	last := bus.texts[len(bus.texts)-1]
	if last != msgAlreadySignedUp {
		t.Errorf("second selection reply = %q", last)
	}
}

func TestCallbackWithoutVenueMatchIsSilent(t *testing.T) {
	yoga := dozenEvent()
	yoga.ID = "e2"
	yoga.Summary = "Yoga Flow"
	h, bus, _, _ := newTestHandler(t, yoga)

	h.HandleCallback(context.Background(), Callback{ID: "cb1", ChatID: 42, MessageID: 7, Username: "alice", Payload: "e2"})

	if len(bus.venues) != 0 {
		t.Errorf("venue card sent without keyword match: %v", bus.venues)
	}
	if len(bus.texts) != 0 {
		t.Errorf("texts = %v", bus.texts)
	}
	if len(bus.edits) != 1 {
		t.Errorf("confirmation missing: %v", bus.edits)
	}
}

func TestCallbackStaleSelection(t *testing.T) {
	h, bus, _, _ := newTestHandler(t)

	h.HandleCallback(context.Background(), Callback{ID: "cb1", ChatID: 42, MessageID: 7, Username: "alice", Payload: "ghost"})

	if len(bus.texts) != 1 || bus.texts[0] != msgFailure {
		t.Errorf("texts = %v", bus.texts)
	}
	if len(bus.venues) != 0 || len(bus.edits) != 0 {
		t.Errorf("stale selection produced side effects")
	}
}

func TestAttendeesListing(t *testing.T) {
	signed := dozenEvent()
	empty := dozenEvent()
	empty.ID = "e2"
	empty.Summary = "Нескучный сад"
	empty.Start = empty.Start.Add(24 * time.Hour)
	empty.End = empty.End.Add(24 * time.Hour)
	h, bus, _, repo := newTestHandler(t, signed, empty)

	for _, username := range []string{"alice", "bob"} {
		if outcome, err := repo.AddAttendee(context.Background(), "e1", username); err != nil || outcome != models.Registered {
			t.Fatalf("seed AddAttendee(%s) = %v, %v", username, outcome, err)
		}
	}

	h.HandleCommand(context.Background(), command("attendees", ""))

	want := []string{
		msgAttendeesHeader,
		"2024-06-01: Dozen 6am (2) - @alice @bob",
		"2024-06-02: Нескучный сад (0) - пока никто не записался",
	}
	if len(bus.texts) != len(want) {
		t.Fatalf("texts = %v", bus.texts)
	}
	for i, text := range want {
		if bus.texts[i] != text {
			t.Errorf("texts[%d] = %q, want %q", i, bus.texts[i], text)
		}
	}
}

func TestAttendeesEmpty(t *testing.T) {
	h, bus, _, _ := newTestHandler(t)

	h.HandleCommand(context.Background(), command("attendees", ""))

	if len(bus.texts) != 1 || bus.texts[0] != msgNoAttendees {
		t.Errorf("texts = %v", bus.texts)
	}
}

func TestFeedbackForwardsMail(t *testing.T) {
	h, bus, mailer, _ := newTestHandler(t)

	h.HandleCommand(context.Background(), command("feedback", "больше тренировок в парках!"))

	if len(mailer.texts) != 1 || mailer.texts[0] != "больше тренировок в парках!" {
		t.Errorf("mailer texts = %v", mailer.texts)
	}
	if mailer.senders[0].Username != "alice" || mailer.senders[0].FirstName != "Alice" {
		t.Errorf("sender = %+v", mailer.senders[0])
	}
	if len(bus.texts) != 1 || bus.texts[0] != msgFeedbackThanks {
		t.Errorf("texts = %v", bus.texts)
	}
}

func TestFeedbackWithoutTextShowsUsage(t *testing.T) {
	h, bus, mailer, _ := newTestHandler(t)

	h.HandleCommand(context.Background(), command("feedback", "  "))

	if len(mailer.texts) != 0 {
		t.Errorf("mail sent for empty feedback")
	}
	if len(bus.texts) != 1 || bus.texts[0] != msgFeedbackUsage {
		t.Errorf("texts = %v", bus.texts)
	}
}
