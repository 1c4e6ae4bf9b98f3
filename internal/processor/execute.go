package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"imgcrush/internal/logging"
	"imgcrush/internal/strategy"
	"imgcrush/internal/toolchain"
	"imgcrush/pkg/imgutil"
)

// scratch is a private working copy of one job's source. The file keeps the
// source extension so tools that infer format from the name behave.
type scratch struct {
	path string
}

func newScratch(dir, src string) (*scratch, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceAccess, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceAccess, err)
	}

	tmp, err := os.CreateTemp(dir, "imgcrush-*"+filepath.Ext(src))
	if err != nil {
		return nil, err
	}
	s := &scratch{path: tmp.Name()}

	if err := tmp.Chmod(info.Mode().Perm() | 0o600); err != nil {
		_ = tmp.Close()
		s.remove()
		return nil, err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		s.remove()
		return nil, fmt.Errorf("%w: %v", ErrSourceAccess, err)
	}
	if err := tmp.Close(); err != nil {
		s.remove()
		return nil, err
	}
	return s, nil
}

func (s *scratch) size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *scratch) remove() {
	_ = os.Remove(s.path)
	_ = os.Remove(toolchain.TempPath(s.path))
}

// execute runs the plan's steps in order against the scratch file. A failed
// step leaves the scratch untouched and the chain continues. It returns an
// error wrapping ErrToolInvocation when no step succeeded or the result is
// not an image of the job's kind.
func execute(ctx context.Context, job Job, plan strategy.Plan, reg toolchain.Registry, s *scratch, log *logging.Logger) error {
	ran := 0
	var errs []error
	for _, step := range plan.Steps {
		tool, ok := reg[step.Tool]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: not registered", step.Tool))
			continue
		}
		err := tool.Compress(ctx, toolchain.Invocation{
			Artifact: s.path,
			Args:     step.Args,
			Quality:  job.Quality,
		})
		if err != nil {
			log.Warn("%s %s failed for %s: %v", step.Stage, step.Tool, job.Display, err)
			errs = append(errs, err)
			continue
		}
		log.Debug("%s %s ok for %s", step.Stage, step.Tool, job.Display)
		ran++
	}

	if ran == 0 {
		return fmt.Errorf("%w: %w", ErrToolInvocation, errors.Join(errs...))
	}

	kind, err := imgutil.SniffFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: inspect output: %v", ErrToolInvocation, err)
	}
	if kind != job.Kind {
		return &outputKindError{got: kind, want: job.Kind}
	}
	return nil
}

// outputKindError reports a tool result whose header does not match the
// source format.
type outputKindError struct {
	got, want imgutil.Kind
}

func (e *outputKindError) Error() string {
	return fmt.Sprintf("%v: output is %s, want %s", ErrToolInvocation, e.got, e.want)
}

func (e *outputKindError) Unwrap() error { return ErrToolInvocation }
