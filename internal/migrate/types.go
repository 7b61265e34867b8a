package migrate

import "os"

// EntryKind classifies a directory child.
type EntryKind int

const (
	KindOther EntryKind = iota
	KindFile
	KindDir
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// Entry is a path discovered while listing a directory.
type Entry struct {
	Path string
	Kind EntryKind
}

func kindOf(info os.FileInfo) EntryKind {
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// Action is what the migrator decided for a marker.
type Action string

const (
	// ActionMove relocates the marker to its flat destination.
	ActionMove Action = "move"
	// ActionSkipTestsDir leaves a marker under a tests directory untouched.
	ActionSkipTestsDir Action = "skip-tests-dir"
)

// Move describes the handling of one marker file.
type Move struct {
	// Marker is the path of the mod.rs file.
	Marker string
	// Dir is the directory containing Marker.
	Dir string
	// Destination is the flat module file Dir collapses into.
	Destination string
	Action      Action
	// DirRemoved reports whether Dir was deleted after the move.
	DirRemoved bool
}

// Observer is notified as the engine makes progress.
type Observer interface {
	MarkerFound(path string)
	MarkerMoved(m Move)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) MarkerFound(string) {}
func (NopObserver) MarkerMoved(Move)   {}
