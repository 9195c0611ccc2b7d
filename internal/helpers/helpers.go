package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/traininginparks/trainbot/internal/models"
)

const noAttendeesYet = "пока никто не записался"

// ScheduleLine renders an event for the schedule listing,
// e.g. "2024-06-01: Dozen 6am с 06:00 до 07:00".
func ScheduleLine(event *models.Event) string {
	return fmt.Sprintf("%s: %s с %s до %s",
		eventDate(event), event.Summary, clock(event.Start), clock(event.End))
}

// SelectionLabel renders the button label for an event,
// e.g. "Dozen 6am: 2024-06-01".
func SelectionLabel(event *models.Event) string {
	return fmt.Sprintf("%s: %s", event.Summary, eventDate(event))
}

// AttendeeLine renders an event with its sign-up list,
// e.g. "2024-06-01: Dozen 6am (2) - @alice @bob".
func AttendeeLine(event *models.Event) string {
	if len(event.Attendees) == 0 {
		return fmt.Sprintf("%s: %s (0) - %s", eventDate(event), event.Summary, noAttendeesYet)
	}
	tags := make([]string, len(event.Attendees))
	for i, attendee := range event.Attendees {
		tags[i] = "@" + attendee
	}
	return fmt.Sprintf("%s: %s (%d) - %s",
		eventDate(event), event.Summary, len(tags), strings.Join(tags, " "))
}

// VenueGreeting renders the line sent right before a venue card,
// e.g. "Ждем тебя 2024-06-01 с 06:00 по адресу:".
func VenueGreeting(event *models.Event) string {
	return fmt.Sprintf("Ждем тебя %s с %s по адресу:", eventDate(event), clock(event.Start))
}

func eventDate(event *models.Event) string {
	return event.Start.In(models.Moscow).Format("2006-01-02")
}

func clock(t time.Time) string {
	return t.In(models.Moscow).Format("15:04")
}
