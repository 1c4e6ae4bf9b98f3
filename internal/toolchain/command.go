package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"imgcrush/internal/config"
)

// Argument placeholders expanded by Command.
const (
	ArgInput   = "{in}"
	ArgOutput  = "{out}"
	ArgQuality = "{quality}"
)

// ErrNoOutput is returned when a tool exited cleanly without writing its output file.
var ErrNoOutput = errors.New("tool produced no output")

// Invocation is one call of a capability against a scratch artifact.
type Invocation struct {
	Artifact string   // Scratch file, rewritten in place on success.
	Args     []string // Argument template using ArgInput, ArgOutput and ArgQuality.
	Quality  int
}

// Compressor is a single compression capability. On success the artifact
// holds the tool's output; on error it is left as it was.
type Compressor interface {
	Compress(ctx context.Context, inv Invocation) error
}

// Registry maps capability names to their implementation.
type Registry map[Name]Compressor

// Commands builds a Registry of external binaries from the configured paths.
func Commands(paths config.ToolPaths) Registry {
	reg := make(Registry, len(All))
	for _, n := range All {
		reg[n] = &Command{Name: n, Binary: Binary(paths, n)}
	}
	return reg
}

// ExecError carries the captured output of a failed tool run.
type ExecError struct {
	Tool   Name
	Err    error
	Output string
}

func (e *ExecError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	if idx := strings.LastIndex(out, "\n"); idx >= 0 {
		out = out[idx+1:]
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, out)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Command runs an external binary against a work file beside the artifact.
// Tools whose template names ArgOutput write the work file from the
// artifact; the rest rewrite a copy in place. The work file replaces the
// artifact only after a clean exit.
type Command struct {
	Name   Name
	Binary string
}

// Compress runs the tool synchronously. stdout and stderr are captured for
// diagnostics only.
func (c *Command) Compress(ctx context.Context, inv Invocation) error {
	work := TempPath(inv.Artifact)
	_ = os.Remove(work)
	defer os.Remove(work)

	in := inv.Artifact
	if !writesOutput(inv.Args) {
		if err := copyFile(inv.Artifact, work); err != nil {
			return fmt.Errorf("%s: prepare work copy: %w", c.Name, err)
		}
		in = work
	}

	cmd := exec.CommandContext(ctx, c.Binary, expand(inv.Args, in, work, inv.Quality)...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return &ExecError{Tool: c.Name, Err: err, Output: buf.String()}
	}

	if _, err := os.Stat(work); err != nil {
		return fmt.Errorf("%s: %w", c.Name, ErrNoOutput)
	}
	return os.Rename(work, inv.Artifact)
}

// TempPath is the work file used for artifact. It keeps the extension so
// tools that infer the format from the name behave.
func TempPath(artifact string) string {
	ext := filepath.Ext(artifact)
	return strings.TrimSuffix(artifact, ext) + ".tmp" + ext
}

func writesOutput(tmpl []string) bool {
	for _, a := range tmpl {
		if strings.Contains(a, ArgOutput) {
			return true
		}
	}
	return false
}

func expand(tmpl []string, in, out string, quality int) []string {
	args := make([]string, len(tmpl))
	for i, a := range tmpl {
		a = strings.ReplaceAll(a, ArgInput, in)
		a = strings.ReplaceAll(a, ArgOutput, out)
		a = strings.ReplaceAll(a, ArgQuality, strconv.Itoa(quality))
		args[i] = a
	}
	return args
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
