// Package display formats sizes and ratios for log lines and summaries.
package display

import "fmt"

// FormatSize returns a human-readable size with one decimal, using 1024-byte
// steps (B, KB, MB, GB, TB).
func FormatSize(bytes int64) string {
	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 && size > -1024 {
			return fmt.Sprintf("%.1f%s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1fTB", size)
}

// Reduction returns the percentage by which after is smaller than before.
// It is 0 when before is not positive.
func Reduction(before, after int64) float64 {
	if before <= 0 {
		return 0
	}
	return 100 * (1 - float64(after)/float64(before))
}
