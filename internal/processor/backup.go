package processor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"imgcrush/internal/config"
)

// BackupGuard mirrors a file under Dir, at its path relative to Root, before
// the file is replaced. Only the most recent pre-compression copy is kept.
type BackupGuard struct {
	Fs             afero.Fs
	Root           string // Absolute.
	Dir            string // Absolute.
	Enabled        bool
	ForceSkipCheck bool
}

// NewBackupGuard builds a guard on the OS filesystem. root is the tree that
// backed-up paths must live in; a relative backup dir is resolved against
// the working directory.
func NewBackupGuard(cfg config.BackupConfig, root string) (*BackupGuard, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return &BackupGuard{
		Fs:             afero.NewOsFs(),
		Root:           absRoot,
		Dir:            absDir,
		Enabled:        cfg.Enabled,
		ForceSkipCheck: cfg.ForceSkipCheck,
	}, nil
}

// Active reports whether Ensure will write anything.
func (g *BackupGuard) Active() bool {
	return g != nil && g.Enabled && !g.ForceSkipCheck
}

// MirrorPath returns where path is backed up.
func (g *BackupGuard) MirrorPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !isWithin(abs, g.Root) {
		return "", fmt.Errorf("%s is outside %s", path, g.Root)
	}
	rel, err := filepath.Rel(g.Root, abs)
	if err != nil {
		return "", err
	}
	return filepath.Join(g.Dir, rel), nil
}

// Ensure writes the mirror for path. Any error wraps ErrBackup and the
// caller must not modify path.
func (g *BackupGuard) Ensure(path string) error {
	if !g.Active() {
		return nil
	}

	dest, err := g.MirrorPath(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	if err := g.Fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	if err := g.copyFile(path, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	return nil
}

// copyFile copies bytes, mode and modification time. The copy is written
// beside dest and renamed so a failed copy never clobbers an older mirror.
func (g *BackupGuard) copyFile(src, dest string) error {
	in, err := g.Fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	partial := dest + ".partial"
	out, err := g.Fs.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer g.Fs.Remove(partial)

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := g.Fs.Chmod(partial, info.Mode().Perm()); err != nil {
		return err
	}
	if err := g.Fs.Chtimes(partial, info.ModTime(), info.ModTime()); err != nil {
		return err
	}
	return g.Fs.Rename(partial, dest)
}
