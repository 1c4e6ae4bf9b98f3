package processor

import (
	"imgcrush/internal/logging"
	"imgcrush/internal/strategy"
	"imgcrush/internal/toolchain"
	"imgcrush/pkg/imgutil"
)

// Options configures a compression run.
type Options struct {
	Workers    int
	ScratchDir string // Empty means the OS temp dir.

	Tools    toolchain.Set
	Registry toolchain.Registry
	Table    strategy.Table // Nil means strategy.DefaultTable().
	Backup   *BackupGuard   // Nil means no backups.
	Log      *logging.Logger
}

// Job is one discovered file. It is processed exactly once and never mutated.
type Job struct {
	Path    string
	RelPath string
	Display string
	Kind    imgutil.Kind
	Quality int
}

// Status is the terminal state of a job.
type Status int

const (
	StatusCompressed Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompressed:
		return "compressed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one job. Sizes are set once known; NewSize is
// only meaningful for compressed jobs and not-smaller skips.
type Outcome struct {
	Job          Job
	Status       Status
	Reason       string
	Err          error
	OriginalSize int64
	NewSize      int64
}

// ProgressUpdate carries deltas for the live progress view.
type ProgressUpdate struct {
	TotalDelta      int
	ProcessedDelta  int
	CompressedDelta int
	SkippedDelta    int
	FailedDelta     int
	BytesSavedDelta int64
}
