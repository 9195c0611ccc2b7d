package handlers

import (
	"context"

	"github.com/traininginparks/trainbot/internal/venues"
)

// Command is an inbound chat command.
type Command struct {
	Name      string
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	Args      string
	Text      string
}

// Callback is an inbound selection callback. Payload carries the event id
// verbatim as rendered into the selection control.
type Callback struct {
	ID        string
	ChatID    int64
	MessageID int
	Username  string
	Payload   string
}

// SelectionItem is one selectable entry of an inline list. The payload is
// returned verbatim on user choice.
type SelectionItem struct {
	Label   string
	Payload string
}

// Bus is the outbound side of the chat transport.
type Bus interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, buttons []string) error
	SendSelection(ctx context.Context, chatID int64, text string, items []SelectionItem) error
	SendVenue(ctx context.Context, chatID int64, venue venues.Venue) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
