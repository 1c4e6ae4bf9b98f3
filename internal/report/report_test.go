package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgcrush/internal/processor"
)

func sampleStats() processor.Stats {
	return processor.Stats{
		Total:          5,
		Processed:      5,
		Compressed:     3,
		Skipped:        1,
		Failed:         1,
		OriginalSize:   3000,
		CompressedSize: 1800,
		SpaceSaved:     1200,
		SkipCauses:     map[string]int{"not smaller": 1},
	}
}

func TestWriteNamesFileByTimestamp(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	rec := NewRecord(sampleStats(), map[string]bool{"mozjpeg": true, "pngquant": false}, at)

	path, err := Write(dir, rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "compression_stats_20240309_140507.json"), path)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.NotEqual(t, uuid.Nil, got.RunID)
	assert.True(t, got.Timestamp.Equal(at))
	assert.Equal(t, sampleStats(), got.Stats)
	assert.Equal(t, map[string]bool{"mozjpeg": true, "pngquant": false}, got.AvailableTools)
}

func TestWriteUsesStatsFieldNames(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, NewRecord(sampleStats(), nil, time.Now()))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"total_files": 5`, `"space_saved": 1200`, `"compressed_size": 1800`, `"run_id"`, `"available_tools"`} {
		assert.Contains(t, string(data), key)
	}
}

func TestWriteKeepsStatsAtTopLevel(t *testing.T) {
	path, err := Write(t.TempDir(), NewRecord(sampleStats(), nil, time.Now()))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.EqualValues(t, 5, fields["total_files"])
	assert.Contains(t, fields, "run_id")
	assert.NotContains(t, fields, "stats")
}

func TestWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	_, err := Write(dir, NewRecord(sampleStats(), nil, time.Now()))
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestWriteFailsOnFileInPlaceOfDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Write(blocker, NewRecord(sampleStats(), nil, time.Now()))
	assert.Error(t, err)
}

func TestRunIDsAreUnique(t *testing.T) {
	a := NewRecord(sampleStats(), nil, time.Now())
	b := NewRecord(sampleStats(), nil, time.Now())
	assert.NotEqual(t, a.RunID, b.RunID)
}
