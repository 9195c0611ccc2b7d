package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/traininginparks/trainbot/internal/handlers"
	"github.com/traininginparks/trainbot/internal/venues"
)

// Dispatcher consumes inbound chat events.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd handlers.Command)
	HandleCallback(ctx context.Context, cb handlers.Callback)
}

// Bot adapts the Telegram Bot API to the chat bus the controller speaks.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

var _ handlers.Bus = (*Bot)(nil)

func NewBot(logger *slog.Logger, token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("Authorized on telegram", "account", api.Self.UserName)
	return &Bot{api: api, logger: logger}, nil
}

// Listen long-polls for updates until ctx is cancelled. Each update is
// dispatched on its own goroutine; ordering within one chat is provided by
// the platform, not by this loop.
func (b *Bot) Listen(ctx context.Context, dispatcher Dispatcher) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(cfg)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		go b.dispatch(ctx, dispatcher, update)
	}
}

func (b *Bot) dispatch(ctx context.Context, dispatcher Dispatcher, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		msg := update.Message
		if msg.From == nil {
			return
		}
		dispatcher.HandleCommand(ctx, handlers.Command{
			Name:      msg.Command(),
			ChatID:    msg.Chat.ID,
			Username:  username(msg.From),
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Args:      msg.CommandArguments(),
			Text:      msg.Text,
		})
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Data == "" {
			return
		}
		dispatcher.HandleCallback(ctx, handlers.Callback{
			ID:        cb.ID,
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
			Username:  username(cb.From),
			Payload:   cb.Data,
		})
	}
}

// username falls back to the first name for accounts without a public
// username; the store needs a stable non-empty identifier.
func username(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) SendMenu(ctx context.Context, chatID int64, text string, buttons []string) error {
	rows := make([][]tgbotapi.KeyboardButton, len(buttons))
	for i, label := range buttons {
		rows[i] = tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send menu: %w", err)
	}
	return nil
}

func (b *Bot) SendSelection(ctx context.Context, chatID int64, text string, items []handlers.SelectionItem) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(items))
	for i, item := range items {
		rows[i] = tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(item.Label, item.Payload))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send selection: %w", err)
	}
	return nil
}

func (b *Bot) SendVenue(ctx context.Context, chatID int64, venue venues.Venue) error {
	cfg := tgbotapi.NewVenue(chatID, venue.Title, venue.Address, venue.Latitude, venue.Longitude)
	if _, err := b.api.Send(cfg); err != nil {
		return fmt.Errorf("send venue: %w", err)
	}
	return nil
}

func (b *Bot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
