// Package report writes the machine-readable record of a compression run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"imgcrush/internal/processor"
)

// fileLayout is the timestamp format used in record file names.
const fileLayout = "20060102_150405"

// Record is one run's stats as written to disk.
type Record struct {
	processor.Stats

	RunID          uuid.UUID       `json:"run_id"`
	Timestamp      time.Time       `json:"timestamp"`
	AvailableTools map[string]bool `json:"available_tools"`
}

// NewRecord stamps stats with a fresh run id and the given time.
func NewRecord(stats processor.Stats, tools map[string]bool, at time.Time) Record {
	return Record{
		RunID:          uuid.New(),
		Stats:          stats,
		Timestamp:      at,
		AvailableTools: tools,
	}
}

// FileName returns compression_stats_YYYYMMDD_HHMMSS.json for the record time.
func (r Record) FileName() string {
	return fmt.Sprintf("compression_stats_%s.json", r.Timestamp.Format(fileLayout))
}

// Write stores r as indented JSON in dir and returns the file path.
func Write(dir string, r Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Read loads a record written by Write.
func Read(path string) (Record, error) {
	var r Record
	data, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("decode report %s: %w", path, err)
	}
	return r, nil
}
