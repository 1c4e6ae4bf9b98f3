package processor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"imgcrush/pkg/imgutil"
)

// DiscoverOptions filters the files Discover returns.
type DiscoverOptions struct {
	Recursive bool
	Kinds     map[imgutil.Kind]bool // Empty means every recognized kind.
	Exclude   []string              // Directories skipped with their subtrees.
	Quality   int
}

// Discover lists the image files under root in path order. root may be a
// single file. Only regular files with a recognized image extension are kept.
func Discover(root string, opts DiscoverOptions) ([]Job, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		job, ok := newJob(absRoot, filepath.Base(absRoot), opts)
		if !ok || !info.Mode().IsRegular() {
			return nil, nil
		}
		return []Job{job}, nil
	}

	var excluded []string
	for _, dir := range opts.Exclude {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		excluded = append(excluded, filepath.Clean(abs))
	}

	var jobs []Job
	fsys := os.DirFS(absRoot)
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == "." {
				return nil
			}
			if !opts.Recursive {
				return fs.SkipDir
			}
			full := filepath.Join(absRoot, path)
			for _, ex := range excluded {
				if isWithin(full, ex) {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := filepath.FromSlash(path)
		if job, ok := newJob(filepath.Join(absRoot, rel), rel, opts); ok {
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })
	return jobs, nil
}

func newJob(path, rel string, opts DiscoverOptions) (Job, bool) {
	kind := imgutil.KindFromPath(path)
	if kind == imgutil.KindUnknown {
		return Job{}, false
	}
	if len(opts.Kinds) > 0 && !opts.Kinds[kind] {
		return Job{}, false
	}
	return Job{
		Path:    path,
		RelPath: rel,
		Display: rel,
		Kind:    kind,
		Quality: opts.Quality,
	}, true
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
