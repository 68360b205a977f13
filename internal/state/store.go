// Package state persists resumable wizard state and a journal of flow events.
package state

import (
	"context"
	"time"
)

// Record types written to the journal.
const (
	RecordPageLoaded   = "page.loaded"
	RecordPageFinished = "page.finished"
	RecordTreeChanged  = "tree.changed"
	RecordFinished     = "flow.finished"
	RecordSaved        = "flow.saved"
)

// Record is one journal entry.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Page      string    `json:"page,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Store keeps the latest resumable snapshot per flow and an append-only
// journal. A missing snapshot is not an error: Load reports found=false.
type Store interface {
	Save(ctx context.Context, flowID string, blob []byte) error
	Load(ctx context.Context, flowID string) (blob []byte, found bool, err error)
	Clear(ctx context.Context, flowID string) error
	Record(ctx context.Context, flowID string, rec Record) error
	History(ctx context.Context, flowID string) ([]Record, error)
}
