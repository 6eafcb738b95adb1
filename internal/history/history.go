// Package history persists finished translation runs to a JSON file, so
// past lookups survive restarts.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/csheth/lingo/internal/translate"
)

// Record is one saved run: the source text and every engine's results.
type Record struct {
	Text      string              `json:"text"`
	Segments  []string            `json:"segments,omitempty"`
	Source    string              `json:"source"`
	Target    string              `json:"target"`
	Results   map[string][]string `json:"results"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Snapshot captures a run as a record. Failed tasks are skipped; a record
// only holds text that actually arrived.
func Snapshot(tr *translate.Translator) Record {
	rec := Record{
		Text:      tr.Text,
		Segments:  tr.Segments,
		Source:    tr.Target.Source,
		Target:    tr.Target.Active(),
		Results:   map[string][]string{},
		CreatedAt: time.Now(),
	}
	for _, task := range tr.Tasks {
		if task.State != translate.StateDone {
			continue
		}
		rec.Results[task.Label] = append([]string(nil), task.Results...)
	}
	return rec
}

// Save appends records to the history file, creating it if necessary.
func Save(path string, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	for _, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		entries = append(entries, raw)
	}
	return writeEntries(path, entries)
}

// Load returns all stored records.
func Load(path string) ([]Record, error) {
	entries, err := loadEntries(path)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(entries))
	for _, raw := range entries {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func writeEntries(path string, entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadEntries(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
