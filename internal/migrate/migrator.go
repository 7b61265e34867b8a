package migrate

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Migrator relocates marker files out of their directories.
type Migrator struct {
	fs  FileSystem
	cfg Config
	options
}

// NewMigrator creates a Migrator over fs.
func NewMigrator(fs FileSystem, cfg Config, opts ...Option) *Migrator {
	return &Migrator{
		fs:      fs,
		cfg:     cfg,
		options: newOptions(opts),
	}
}

// Migrate processes markers in order. Each marker is copied to the flat file
// next to its directory and then deleted; the directory is removed when that
// leaves it empty, unless LeaveEmptyDirs is set. An existing destination is
// overwritten.
//
// The first error stops the run. The returned moves are those completed
// before it, plus the failing marker when it was already moved and only
// removing its directory failed. Markers not yet reached are left as they were.
//
// A marker needs a parent directory to collapse into: a bare "mod.rs", as
// produced by scanning the relative root ".", fails with ErrMissingParent.
// Scan an absolute root to flatten a top-level module directory.
func (m *Migrator) Migrate(markers []string) ([]Move, error) {
	moves := make([]Move, 0, len(markers))

	for _, marker := range markers {
		mv, err := m.decide(marker)
		if err != nil {
			return moves, err
		}

		if mv.Action == ActionSkipTestsDir {
			m.logger.Debug("skipping marker in tests directory", zap.String("marker", marker))
			moves = append(moves, mv)
			m.observer.MarkerMoved(mv)
			continue
		}

		if err := m.moveFile(mv.Marker, mv.Destination); err != nil {
			return moves, err
		}
		m.logger.Debug("moved marker", zap.String("from", mv.Marker), zap.String("to", mv.Destination))

		// The marker has already moved; report it even if cleanup fails.
		err = m.removeIfEmpty(&mv)
		moves = append(moves, mv)
		m.observer.MarkerMoved(mv)
		if err != nil {
			return moves, err
		}
	}

	return moves, nil
}

// Plan returns what Migrate would do for markers without touching the
// filesystem. DirRemoved is never set since emptiness is only known after
// the move.
func (m *Migrator) Plan(markers []string) ([]Move, error) {
	moves := make([]Move, 0, len(markers))
	for _, marker := range markers {
		mv, err := m.decide(marker)
		if err != nil {
			return moves, err
		}
		moves = append(moves, mv)
	}
	return moves, nil
}

func (m *Migrator) decide(marker string) (Move, error) {
	dir, ok := parentDir(marker)
	if !ok {
		return Move{}, fmt.Errorf("%s: %w", marker, ErrMissingParent)
	}

	mv := Move{
		Marker:      marker,
		Dir:         dir,
		Destination: Destination(dir),
		Action:      ActionMove,
	}
	if !m.cfg.NoSpecialTreatmentForTestsDir && IsExempt(marker) {
		mv.Action = ActionSkipTestsDir
	}
	return mv, nil
}

// Destination returns the flat module file that dir collapses into: a sibling
// of dir named after it, with its extension replaced by FlatExt.
func Destination(dir string) string {
	base := filepath.Base(dir)
	if ext := filepath.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(filepath.Dir(dir), base+"."+FlatExt)
}

// IsExempt reports whether marker lives in a module directory directly under
// a directory named tests.
func IsExempt(marker string) bool {
	return filepath.Base(filepath.Dir(filepath.Dir(marker))) == TestsDirName
}

// parentDir returns the directory containing p, or false when there is no
// directory that could be collapsed.
func parentDir(p string) (string, bool) {
	dir := filepath.Dir(p)
	if dir == "." || dir == p {
		return "", false
	}
	if dir == filepath.VolumeName(dir)+string(filepath.Separator) {
		return "", false
	}
	return dir, true
}

// moveFile copies then deletes, so it works across volumes but is not atomic.
func (m *Migrator) moveFile(src, dst string) error {
	if err := m.fs.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := m.fs.Remove(src); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (m *Migrator) removeIfEmpty(mv *Move) error {
	if m.cfg.LeaveEmptyDirs {
		return nil
	}
	empty, err := m.isDirEmpty(mv.Dir)
	if err != nil || !empty {
		return err
	}
	if err := m.fs.Remove(mv.Dir); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	mv.DirRemoved = true
	m.logger.Debug("removed empty directory", zap.String("dir", mv.Dir))
	return nil
}

func (m *Migrator) isDirEmpty(dir string) (bool, error) {
	children, err := m.fs.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to list directory: %w", err)
	}
	return len(children) == 0, nil
}
