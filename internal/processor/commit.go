package processor

import (
	"errors"
	"fmt"
	"os"
)

// commit replaces the original with the scratch bytes only when they are
// strictly smaller. The original is overwritten in place so its inode and
// permissions survive; a failed write restores the original bytes.
func commit(job Job, s *scratch, originalSize int64) Outcome {
	out := Outcome{Job: job, OriginalSize: originalSize}

	newSize, err := s.size()
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	out.NewSize = newSize

	if newSize >= originalSize {
		out.Status = StatusSkipped
		out.Reason = ReasonNotSmaller
		out.Err = ErrNotSmaller
		return out
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	original, err := os.ReadFile(job.Path)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("%w: %v", ErrSourceAccess, err)
		return out
	}

	f, err := os.OpenFile(job.Path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("%w: %v", ErrCommit, err)
		return out
	}
	if err := writeAndClose(f, data); err != nil {
		if rerr := restore(job.Path, original); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore original: %w", rerr))
		}
		out.Status = StatusFailed
		out.Err = fmt.Errorf("%w: %w", ErrCommit, err)
		return out
	}

	out.Status = StatusCompressed
	return out
}

func restore(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	return writeAndClose(f, data)
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
