// Package session stores wizard flow state as an event log on embedded NATS
// JetStream. Snapshots, journal records and control events are appended;
// the current state is rebuilt by replaying them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/nats"
	"github.com/mark3labs/setupwizard/internal/state"
	"github.com/nats-io/nats.go/jetstream"
)

// Event is one entry in the JetStream event log.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	Flow      string          `json:"flow"`
	Type      string          `json:"type"`   // snapshot, journal, control
	Action    string          `json:"action"` // save, record, clear
	Data      json.RawMessage `json:"data,omitempty"`
}

// Control actions.
const (
	ActionSave   = "save"
	ActionRecord = "record"
	ActionClear  = "clear"
)

// Store implements state.Store on JetStream.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

var _ state.Store = (*Store)(nil)

// NewStore creates a Store with the given JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{
		js:     js,
		stream: stream,
	}
}

// PublishEvent appends event to the log under setupwizard.<flow>.<type>.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Flow, event.Type)
	logger.Debug("Publishing event: flow=%s type=%s action=%s", event.Flow, event.Type, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// State is a flow's state rebuilt from its events.
type State struct {
	Flow     string
	Snapshot []byte
	Journal  []state.Record
}

// Apply folds event into the state.
func (st *State) Apply(event Event) {
	switch event.Type {
	case nats.EventTypeSnapshot:
		st.Snapshot = append([]byte(nil), event.Data...)
	case nats.EventTypeJournal:
		var rec state.Record
		if err := json.Unmarshal(event.Data, &rec); err != nil {
			logger.Warn("Skipping malformed journal record: %v", err)
			return
		}
		st.Journal = append(st.Journal, rec)
	case nats.EventTypeControl:
		if event.Action == ActionClear {
			st.Snapshot = nil
			st.Journal = nil
		}
	}
}

// LoadState replays every event of flowID.
func (s *Store) LoadState(ctx context.Context, flowID string) (*State, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForFlow(flowID),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	st := &State{Flow: flowID}

	const batchSize = 500
	total, malformed := 0, 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			total++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			st.Apply(event)
			_ = msg.Ack()
		}

		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed events while loading flow %s", malformed, flowID)
	}
	logger.Debug("Flow %s loaded: %d events, %d journal records", flowID, total, len(st.Journal))
	return st, nil
}

// Save appends a snapshot.
func (s *Store) Save(ctx context.Context, flowID string, blob []byte) error {
	if !json.Valid(blob) {
		return fmt.Errorf("snapshot for %s is not valid JSON", flowID)
	}
	_, err := s.PublishEvent(ctx, Event{
		Flow:   flowID,
		Type:   nats.EventTypeSnapshot,
		Action: ActionSave,
		Data:   blob,
	})
	return err
}

// Load returns the latest snapshot since the last clear.
func (s *Store) Load(ctx context.Context, flowID string) ([]byte, bool, error) {
	st, err := s.LoadState(ctx, flowID)
	if err != nil {
		return nil, false, err
	}
	if st.Snapshot == nil {
		return nil, false, nil
	}
	return st.Snapshot, true, nil
}

// Clear appends a clear marker; earlier snapshots and records are ignored
// from then on.
func (s *Store) Clear(ctx context.Context, flowID string) error {
	_, err := s.PublishEvent(ctx, Event{
		Flow:   flowID,
		Type:   nats.EventTypeControl,
		Action: ActionClear,
	})
	return err
}

// Record appends a journal record.
func (s *Store) Record(ctx context.Context, flowID string, rec state.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, err = s.PublishEvent(ctx, Event{
		Flow:      flowID,
		Timestamp: rec.Timestamp,
		Type:      nats.EventTypeJournal,
		Action:    ActionRecord,
		Data:      data,
	})
	return err
}

// History returns journal records since the last clear.
func (s *Store) History(ctx context.Context, flowID string) ([]state.Record, error) {
	st, err := s.LoadState(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return st.Journal, nil
}

// Open starts an embedded server under dataDir and returns a ready Store
// plus the server handle to close on exit.
func Open(ctx context.Context, dataDir string) (*Store, *nats.Embedded, error) {
	emb, err := nats.Open(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("starting nats: %w", err)
	}
	stream, err := nats.SetupStream(ctx, emb.JS)
	if err != nil {
		_ = emb.Close()
		return nil, nil, fmt.Errorf("setting up stream: %w", err)
	}
	return NewStore(emb.JS, stream), emb, nil
}
