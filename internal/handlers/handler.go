package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/traininginparks/trainbot/internal/analytics"
	"github.com/traininginparks/trainbot/internal/helpers"
	"github.com/traininginparks/trainbot/internal/models"
	"github.com/traininginparks/trainbot/internal/notify"
	"github.com/traininginparks/trainbot/internal/venues"
)

const (
	msgWelcome         = "Добро пожаловать, атлет!"
	msgScheduleHeader  = "Расписание следующих тренировок:"
	msgPickTraining    = "Давай запишемся на одну из тренировок:"
	msgNoTrainings     = "Пока тренировки не запланированы. Восстанавливаемся!"
	msgRegistered      = "Отлично, записались!"
	msgAlreadySignedUp = "Ты уже записан(а) на эту тренировку"
	msgAttendeesHeader = "Список людей, записавшихся на предстоящие тренировки:"
	msgNoAttendees     = "Нет тренировок, нет и записавшихся"
	msgFailure         = "Что-то пошло не так, попробуй еще раз"
	msgFeedbackThanks  = "Спасибо! Передали тренерам."
	msgFeedbackUsage   = "Напиши отзыв сразу после команды: /feedback <текст>"
)

// BotHandler turns inbound chat events into store reads/writes and outbound
// chat messages. All collaborators come in through the constructor; there is
// no module-level state.
type BotHandler struct {
	logger  *slog.Logger
	repo    models.EventRepo
	bus     Bus
	venues  venues.Table
	tracker analytics.Tracker
	mailer  notify.Mailer

	trainLimit     int
	attendeesLimit int
}

func NewBotHandler(
	logger *slog.Logger,
	repo models.EventRepo,
	bus Bus,
	venueTable venues.Table,
	tracker analytics.Tracker,
	mailer notify.Mailer,
	trainLimit, attendeesLimit int,
) *BotHandler {
	return &BotHandler{
		logger:         logger,
		repo:           repo,
		bus:            bus,
		venues:         venueTable,
		tracker:        tracker,
		mailer:         mailer,
		trainLimit:     trainLimit,
		attendeesLimit: attendeesLimit,
	}
}

func (h *BotHandler) HandleCommand(ctx context.Context, cmd Command) {
	switch cmd.Name {
	case "start":
		h.Start(ctx, cmd)
	case "train":
		h.Train(ctx, cmd)
	case "attendees":
		h.Attendees(ctx, cmd)
	case "feedback":
		h.Feedback(ctx, cmd)
	default:
		h.logger.Debug("Ignoring unknown command", "command", cmd.Name, "chat_id", cmd.ChatID)
	}
}

// Start greets a new user with the fixed two-option action menu.
func (h *BotHandler) Start(ctx context.Context, cmd Command) {
	if err := h.bus.SendMenu(ctx, cmd.ChatID, msgWelcome, []string{"/train", "/attendees"}); err != nil {
		h.logger.Error("Failed to send welcome menu", "chat_id", cmd.ChatID, "error", err)
		return
	}
	h.track(cmd, msgWelcome)
}

// Train lists the next trainings and offers a selection control keyed by
// event id.
func (h *BotHandler) Train(ctx context.Context, cmd Command) {
	events, err := h.repo.ListUpcoming(ctx, h.trainLimit)
	if err != nil {
		h.logger.Error("Failed to list upcoming events", "chat_id", cmd.ChatID, "error", err)
		h.reply(ctx, cmd, msgFailure)
		return
	}
	if len(events) == 0 {
		h.reply(ctx, cmd, msgNoTrainings)
		return
	}

	h.reply(ctx, cmd, msgScheduleHeader)
	items := make([]SelectionItem, 0, len(events))
	for _, event := range events {
		h.reply(ctx, cmd, helpers.ScheduleLine(event))
		items = append(items, SelectionItem{Label: helpers.SelectionLabel(event), Payload: event.ID})
	}

	if err := h.bus.SendSelection(ctx, cmd.ChatID, msgPickTraining, items); err != nil {
		h.logger.Error("Failed to send selection", "chat_id", cmd.ChatID, "error", err)
		return
	}
	h.track(cmd, msgPickTraining)
}

// Attendees reports the sign-up list for each upcoming training.
func (h *BotHandler) Attendees(ctx context.Context, cmd Command) {
	events, err := h.repo.ListUpcoming(ctx, h.attendeesLimit)
	if err != nil {
		h.logger.Error("Failed to list upcoming events", "chat_id", cmd.ChatID, "error", err)
		h.reply(ctx, cmd, msgFailure)
		return
	}
	if len(events) == 0 {
		h.reply(ctx, cmd, msgNoAttendees)
		return
	}

	h.reply(ctx, cmd, msgAttendeesHeader)
	for _, event := range events {
		h.reply(ctx, cmd, helpers.AttendeeLine(event))
	}
}

// Feedback forwards the text after the command to the maintainers by mail.
func (h *BotHandler) Feedback(ctx context.Context, cmd Command) {
	text := strings.TrimSpace(cmd.Args)
	if text == "" {
		h.reply(ctx, cmd, msgFeedbackUsage)
		return
	}

	sender := notify.Sender{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Username:  cmd.Username,
	}
	if err := h.mailer.SendFeedback(sender, text); err != nil {
		h.logger.Error("Failed to forward feedback", "username", cmd.Username, "error", err)
		h.reply(ctx, cmd, msgFailure)
		return
	}
	h.reply(ctx, cmd, msgFeedbackThanks)
}

// HandleCallback registers the user for the event named by the callback
// payload. The payload is trusted as-is: it is the same self-describing
// token the selection control carried.
func (h *BotHandler) HandleCallback(ctx context.Context, cb Callback) {
	if err := h.bus.AnswerCallback(ctx, cb.ID, ""); err != nil {
		h.logger.Warn("Failed to ack callback", "callback_id", cb.ID, "error", err)
	}

	outcome, err := h.repo.AddAttendee(ctx, cb.Payload, cb.Username)
	if err != nil {
		h.logger.Error("Registration failed", "event_id", cb.Payload, "username", cb.Username, "error", err)
		h.send(ctx, cb.ChatID, msgFailure)
		return
	}

	switch outcome {
	case models.AlreadyRegistered:
		h.send(ctx, cb.ChatID, msgAlreadySignedUp)
		h.trackCallback(cb, msgAlreadySignedUp)
	case models.EventNotFound:
		// The event vanished between listing and selection, or the
		// payload was replayed for an event never shown.
		h.logger.Warn("Selection points at unknown event", "event_id", cb.Payload, "username", cb.Username)
		h.send(ctx, cb.ChatID, msgFailure)
	case models.Registered:
		h.confirmRegistration(ctx, cb)
	}
}

func (h *BotHandler) confirmRegistration(ctx context.Context, cb Callback) {
	// Editing the selection message retires its stale keyboard along with
	// delivering the confirmation.
	if err := h.bus.EditMessageText(ctx, cb.ChatID, cb.MessageID, msgRegistered); err != nil {
		h.logger.Warn("Failed to edit selection message", "chat_id", cb.ChatID, "error", err)
		h.send(ctx, cb.ChatID, msgRegistered)
	}
	h.trackCallback(cb, msgRegistered)

	event, err := h.repo.GetEvent(ctx, cb.Payload)
	if err != nil {
		h.logger.Error("Registered event unreadable", "event_id", cb.Payload, "error", err)
		return
	}

	venue, ok := h.venues.Resolve(event.Summary)
	if !ok {
		return
	}
	h.send(ctx, cb.ChatID, helpers.VenueGreeting(event))
	if err := h.bus.SendVenue(ctx, cb.ChatID, venue); err != nil {
		h.logger.Error("Failed to send venue card", "chat_id", cb.ChatID, "venue", venue.Title, "error", err)
	}
}

// reply sends text and mirrors it to analytics.
func (h *BotHandler) reply(ctx context.Context, cmd Command, text string) {
	if err := h.bus.SendText(ctx, cmd.ChatID, text); err != nil {
		h.logger.Error("Failed to send reply", "chat_id", cmd.ChatID, "error", err)
		return
	}
	h.track(cmd, text)
}

func (h *BotHandler) send(ctx context.Context, chatID int64, text string) {
	if err := h.bus.SendText(ctx, chatID, text); err != nil {
		h.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *BotHandler) track(cmd Command, replyText string) {
	h.tracker.Track(cmd.Username, cmd.Text, map[string]interface{}{
		"chat_id": cmd.ChatID,
		"reply":   replyText,
	})
}

func (h *BotHandler) trackCallback(cb Callback, replyText string) {
	h.tracker.Track(cb.Username, "train_select", map[string]interface{}{
		"chat_id":  cb.ChatID,
		"event_id": cb.Payload,
		"reply":    replyText,
	})
}
