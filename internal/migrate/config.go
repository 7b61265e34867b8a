// Package migrate moves directory modules (foo/mod.rs) out to flat module
// files (foo.rs).
//
// Migration runs in two strictly sequential stages: a Scanner collects every
// marker file under a root, then a Migrator relocates each one in the order
// given. Neither stage runs anything in parallel and neither retries.
package migrate

import (
	"errors"
	"os"
)

const (
	// MarkerName is the file that represents its directory as a module.
	MarkerName = "mod.rs"
	// FlatExt is the extension given to the flattened module file.
	FlatExt = "rs"
	// TestsDirName is the directory name whose module subdirectories are left alone.
	TestsDirName = "tests"
)

// ErrMissingParent is returned for a marker that has no containing directory
// to collapse, such as a marker sitting at the filesystem root.
var ErrMissingParent = errors.New("missing parent")

// Config holds the per-run flags shared by Scanner and Migrator.
// It is read once and never modified during a run.
type Config struct {
	// FollowSymlinks descends into symlinks as if they were directories.
	// A symlink cycle makes the scan diverge.
	FollowSymlinks bool
	// LeaveEmptyDirs keeps directories that end up empty after their marker moved.
	LeaveEmptyDirs bool
	// NoSpecialTreatmentForTestsDir flattens modules under a directory named tests too.
	NoSpecialTreatmentForTestsDir bool
}

// FileSystem is the set of filesystem operations the engine performs.
type FileSystem interface {
	// ReadDir lists a directory's immediate children. Symlinks among the
	// children are reported as symlinks, not as their targets.
	ReadDir(path string) ([]os.FileInfo, error)
	// CopyFile copies src over dst, overwriting dst if it exists.
	CopyFile(src, dst string) error
	// Remove deletes a file or an empty directory.
	Remove(path string) error
}
