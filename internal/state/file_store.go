package state

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/setupwizard/internal/logger"
)

// FileStore keeps snapshots and journals as files under a data directory:
// <dir>/<flow>.state.json and <dir>/<flow>.journal (JSON lines).
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) statePath(flowID string) string {
	return filepath.Join(s.dir, slug.Make(flowID)+".state.json")
}

func (s *FileStore) journalPath(flowID string) string {
	return filepath.Join(s.dir, slug.Make(flowID)+".journal")
}

// Save writes blob as the flow's snapshot, replacing any previous one.
func (s *FileStore) Save(ctx context.Context, flowID string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := s.statePath(flowID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return fmt.Errorf("writing flow state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing flow state: %w", err)
	}

	logger.Debug("Flow state saved to %s", path)
	return nil
}

// Load returns the flow's snapshot. A missing or unreadable file is reported
// as not found so the wizard starts fresh.
func (s *FileStore) Load(ctx context.Context, flowID string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := s.statePath(flowID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		logger.Warn("Failed to read flow state file: %v", err)
		return nil, false, nil
	}
	if !json.Valid(data) {
		logger.Warn("Ignoring corrupt flow state file %s", path)
		return nil, false, nil
	}
	return data, true, nil
}

// Clear deletes the flow's snapshot and journal.
func (s *FileStore) Clear(ctx context.Context, flowID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, path := range []string{s.statePath(flowID), s.journalPath(flowID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// Record appends rec to the flow's journal.
func (s *FileStore) Record(ctx context.Context, flowID string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling journal record: %w", err)
	}

	f, err := os.OpenFile(s.journalPath(flowID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

// History returns the flow's journal in order. Malformed lines are skipped.
func (s *FileStore) History(ctx context.Context, flowID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.journalPath(flowID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			logger.Warn("Skipping malformed journal line: %v", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("reading journal: %w", err)
	}
	return records, nil
}
