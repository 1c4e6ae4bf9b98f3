package processor

import (
	"io"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"imgcrush/pkg/imgutil"
)

// PreviewEntry describes one file a run would touch.
type PreviewEntry struct {
	Job      Job
	Size     int64
	ExifTags int // Tags a JPEG re-encode would drop.
	Err      error
}

// PreviewResult lists the head of a job list without modifying anything.
type PreviewResult struct {
	Entries   []PreviewEntry
	Remaining int
	Files     int
	TotalSize int64
}

// Preview stats every job and inspects the first limit of them in detail.
// A limit <= 0 inspects all jobs.
func Preview(jobs []Job, limit int) PreviewResult {
	res := PreviewResult{Files: len(jobs)}
	if limit <= 0 || limit > len(jobs) {
		limit = len(jobs)
	}
	res.Remaining = len(jobs) - limit

	for i, job := range jobs {
		info, err := os.Stat(job.Path)
		if err == nil {
			res.TotalSize += info.Size()
		}
		if i >= limit {
			continue
		}

		entry := PreviewEntry{Job: job, Err: err}
		if err == nil {
			entry.Size = info.Size()
			entry.ExifTags, entry.Err = exifTagsAt(job)
		}
		res.Entries = append(res.Entries, entry)
	}
	return res
}

func exifTagsAt(job Job) (int, error) {
	if job.Kind != imgutil.KindJPEG && job.Kind != imgutil.KindTIFF {
		return 0, nil
	}
	f, err := os.Open(job.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return countExifTags(f)
}

func countExifTags(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(tags), nil
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
