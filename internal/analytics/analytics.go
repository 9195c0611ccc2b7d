package analytics

import (
	"log/slog"

	"github.com/amplitude/analytics-go/amplitude"
	"github.com/google/uuid"
)

// Tracker mirrors outbound interactions to an analytics sink. Calls are
// fire-and-forget: they must never block or fail the user-visible reply.
type Tracker interface {
	Track(userID, eventName string, properties map[string]interface{})
}

// AmplitudeTracker ships events to Amplitude. The SDK buffers and flushes
// on its own goroutine, so Track returns immediately.
type AmplitudeTracker struct {
	client amplitude.Client
	logger *slog.Logger
}

func NewAmplitudeTracker(logger *slog.Logger, apiKey string) *AmplitudeTracker {
	config := amplitude.NewConfig(apiKey)
	return &AmplitudeTracker{
		client: amplitude.NewClient(config),
		logger: logger,
	}
}

func (t *AmplitudeTracker) Track(userID, eventName string, properties map[string]interface{}) {
	t.client.Track(amplitude.Event{
		EventType: eventName,
		EventOptions: amplitude.EventOptions{
			UserID:   userID,
			InsertID: uuid.NewString(),
		},
		EventProperties: properties,
	})
}

// Close flushes buffered events. Call on shutdown.
func (t *AmplitudeTracker) Close() {
	t.client.Shutdown()
}

// NoopTracker is used when no analytics key is configured.
type NoopTracker struct{}

func (NoopTracker) Track(string, string, map[string]interface{}) {}
