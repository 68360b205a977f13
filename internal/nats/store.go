package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "setupwizard_events"

// Event types, the last subject token.
const (
	EventTypeSnapshot = "snapshot"
	EventTypeJournal  = "journal"
	EventTypeControl  = "control"
)

// FlowToken turns a flow id into a single subject token.
func FlowToken(flowID string) string {
	if s := slug.Make(flowID); s != "" {
		return s
	}
	return "default"
}

// SubjectForFlow returns the wildcard subject for every event of a flow.
// Example: "setupwizard.first-boot.>"
func SubjectForFlow(flowID string) string {
	return fmt.Sprintf("setupwizard.%s.>", FlowToken(flowID))
}

// SubjectForEvent returns the subject for one event type of a flow.
// Example: "setupwizard.first-boot.snapshot"
func SubjectForEvent(flowID, eventType string) string {
	return fmt.Sprintf("setupwizard.%s.%s", FlowToken(flowID), eventType)
}

// SetupStream creates or updates the stream holding all wizard events.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"setupwizard.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}
