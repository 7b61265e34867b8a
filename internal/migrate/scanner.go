package migrate

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Scanner discovers marker files under a root directory.
type Scanner struct {
	fs  FileSystem
	cfg Config
	options
}

// NewScanner creates a Scanner over fs.
func NewScanner(fs FileSystem, cfg Config, opts ...Option) *Scanner {
	return &Scanner{
		fs:      fs,
		cfg:     cfg,
		options: newOptions(opts),
	}
}

// Scan walks the tree below root and returns the paths of all marker files.
//
// Directories are expanded from an explicit stack, so the most recently
// discovered directory is listed next. Children come in whatever order the
// filesystem returns them. The result is complete but its order is not
// meaningful.
//
// The first listing error aborts the scan and no partial result is returned.
// With FollowSymlinks set there is no cycle detection.
//
// Returned paths are joined onto root as given. Scanning "." yields a bare
// "mod.rs" for a top-level marker, which Migrate rejects with
// ErrMissingParent.
func (s *Scanner) Scan(root string) ([]string, error) {
	pending := []string{root}
	var markers []string

	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := s.fs.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list directory: %w", err)
		}
		s.logger.Debug("listed directory", zap.String("dir", dir), zap.Int("entries", len(children)))

		for _, info := range children {
			entry := Entry{Path: filepath.Join(dir, info.Name()), Kind: kindOf(info)}

			switch entry.Kind {
			case KindDir:
				pending = append(pending, entry.Path)
			case KindSymlink:
				if s.cfg.FollowSymlinks {
					pending = append(pending, entry.Path)
				}
			case KindFile:
				if info.Name() == MarkerName {
					markers = append(markers, entry.Path)
					s.observer.MarkerFound(entry.Path)
				}
			}
		}
	}

	return markers, nil
}
