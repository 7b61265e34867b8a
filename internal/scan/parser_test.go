package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabssanto/modflat/internal/migrate"
)

func TestNewReportRecordsError(t *testing.T) {
	result := &Result{
		Root:    "/r",
		Markers: []string{"/r/a/mod.rs", "/r/b/mod.rs"},
		Moves: []migrate.Move{
			{Marker: "/r/a/mod.rs", Destination: "/r/a.rs", Action: migrate.ActionMove, DirRemoved: true},
		},
	}

	report := NewReport(result, migrate.Config{FollowSymlinks: true}, errors.New("migration failed: boom"))

	assert.Equal(t, 1, report.Version)
	assert.True(t, report.Config.FollowSymlinks)
	assert.Len(t, report.Markers, 2)
	require.Len(t, report.Moves, 1)
	assert.True(t, report.Moves[0].DirRemoved)
	assert.Equal(t, "migration failed: boom", report.Error)
}

func TestWriteReportYAMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	report := NewReport(&Result{Root: "/r"}, migrate.Config{LeaveEmptyDirs: true}, nil)

	require.NoError(t, WriteReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "leave_empty_dirs: true")
	assert.Contains(t, string(data), "markers: []")
	assert.NotContains(t, string(data), "error:")
}

func TestParseReportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseReport(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: [unterminated"), 0644))
	_, err = ParseReport(bad)
	assert.ErrorContains(t, err, "failed to parse YAML")

	future := filepath.Join(dir, "future.yaml")
	require.NoError(t, os.WriteFile(future, []byte("version: 7\nroot: /r\n"), 0644))
	_, err = ParseReport(future)
	assert.ErrorContains(t, err, "unsupported report version")
}
