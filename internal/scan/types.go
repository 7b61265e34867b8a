package scan

import (
	"io"

	"github.com/gabssanto/modflat/internal/migrate"
)

// Options controls a single migration run
type Options struct {
	Root        string
	Config      migrate.Config
	DryRun      bool
	Interactive bool
	ReportPath  string // YAML report destination, empty to skip
	JournalPath string // SQLite journal, empty to skip
	Out         io.Writer
	Progress    io.Writer // nil disables the progress counter
}

// Result is what a run found and did
type Result struct {
	Root    string
	Markers []string
	Moves   []migrate.Move
	DryRun  bool
	RunID   int64 // journal run id, 0 when no journal was written
}

// Counts summarizes moves by outcome
func (r *Result) Counts() (moved, skipped, removedDirs int) {
	for _, m := range r.Moves {
		switch m.Action {
		case migrate.ActionMove:
			moved++
		case migrate.ActionSkipTestsDir:
			skipped++
		}
		if m.DirRemoved {
			removedDirs++
		}
	}
	return moved, skipped, removedDirs
}

// Report is the YAML document written by --report
type Report struct {
	Version int          `yaml:"version"`
	Root    string       `yaml:"root"`
	DryRun  bool         `yaml:"dry_run"`
	Config  ReportConfig `yaml:"config"`
	Markers []string     `yaml:"markers"`
	Moves   []ReportMove `yaml:"moves"`
	Error   string       `yaml:"error,omitempty"`
}

// ReportConfig mirrors migrate.Config
type ReportConfig struct {
	FollowSymlinks                bool `yaml:"follow_symlinks"`
	LeaveEmptyDirs                bool `yaml:"leave_empty_dirs"`
	NoSpecialTreatmentForTestsDir bool `yaml:"no_special_treatment_for_tests_dir"`
}

// ReportMove is one marker's outcome in a report
type ReportMove struct {
	Marker      string `yaml:"marker"`
	Destination string `yaml:"destination"`
	Action      string `yaml:"action"`
	DirRemoved  bool   `yaml:"dir_removed,omitempty"`
}
