package telemetry

import (
	"log"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// Tracker records product analytics events
type Tracker interface {
	Track(event string, props map[string]interface{})
	Close() error
}

// New returns a PostHog-backed tracker, or a no-op tracker when key is empty or
// the client can't be created.
func New(key, host string) Tracker {
	if key == "" {
		return noopTracker{}
	}

	client, err := posthog.NewWithConfig(key, posthog.Config{Endpoint: host})
	if err != nil {
		log.Printf("[Telemetry] Failed to initialize PostHog: %v", err)
		return noopTracker{}
	}
	return newPostHogTracker(client)
}

// PostHogTracker sends events under a distinct ID generated once per process.
type PostHogTracker struct {
	client     posthog.Client
	distinctID string
}

func newPostHogTracker(client posthog.Client) *PostHogTracker {
	return &PostHogTracker{client: client, distinctID: uuid.NewString()}
}

// DistinctID returns the anonymous ID events are reported under
func (t *PostHogTracker) DistinctID() string {
	return t.distinctID
}

// Track enqueues an event; delivery failures are logged and dropped.
func (t *PostHogTracker) Track(event string, props map[string]interface{}) {
	err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		log.Printf("[Telemetry] Failed to enqueue %s: %v", event, err)
	}
}

// Close flushes pending events
func (t *PostHogTracker) Close() error {
	return t.client.Close()
}

type noopTracker struct{}

func (noopTracker) Track(string, map[string]interface{}) {}

func (noopTracker) Close() error { return nil }
