package processor

import (
	"errors"

	"imgcrush/internal/strategy"
)

// Error classes attached to every non-compressed Outcome. Test with errors.Is.
var (
	ErrBackup            = errors.New("backup failed")
	ErrUnsupportedFormat = strategy.ErrUnsupportedFormat
	ErrToolUnavailable   = strategy.ErrNoTool
	ErrToolInvocation    = errors.New("compression tool failed")
	ErrSourceAccess      = errors.New("source not accessible")
	ErrCommit            = errors.New("replace original failed")
	ErrNotSmaller        = errors.New("compressed output not smaller")
)

// Skip reasons reported to the operator.
const (
	ReasonUnsupported = "format not handled"
	ReasonNoOutput    = "compression tool produced no output"
	ReasonBadOutput   = "compression tool output unrecognized"
	ReasonNotSmaller  = "not smaller"
)

// causeLabel names the error class of an outcome for the skip breakdown.
func causeLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported format"
	case errors.Is(err, ErrToolUnavailable):
		return "tool unavailable"
	case errors.Is(err, ErrToolInvocation):
		return "tool invocation failed"
	case errors.Is(err, ErrNotSmaller):
		return "not smaller"
	case errors.Is(err, ErrBackup):
		return "backup failed"
	case errors.Is(err, ErrSourceAccess):
		return "source not accessible"
	case errors.Is(err, ErrCommit):
		return "commit failed"
	default:
		return "other"
	}
}
