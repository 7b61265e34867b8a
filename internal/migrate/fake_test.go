package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type fakeInfo struct {
	name string
	mode os.FileMode
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() os.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() any           { return nil }

// fakeFS is a scripted FileSystem. Children are listed in insertion order so
// tests can pin down traversal order, and any operation can be made to fail.
type fakeFS struct {
	children map[string][]fakeInfo
	contents map[string]string
	links    map[string]string
	fail     map[string]error
	calls    []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		children: map[string][]fakeInfo{},
		contents: map[string]string{},
		links:    map[string]string{},
		fail:     map[string]error{},
	}
}

func (f *fakeFS) addChild(path string, mode os.FileMode) {
	dir := filepath.Dir(path)
	if dir != path {
		if _, ok := f.children[dir]; !ok && dir != "." && dir != "/" {
			f.addChild(dir, os.ModeDir|0o755)
		}
	}
	for _, c := range f.children[dir] {
		if c.name == filepath.Base(path) {
			return
		}
	}
	f.children[dir] = append(f.children[dir], fakeInfo{name: filepath.Base(path), mode: mode})
	if mode.IsDir() {
		if _, ok := f.children[path]; !ok {
			f.children[path] = nil
		}
	}
}

func (f *fakeFS) dir(path string) {
	f.addChild(path, os.ModeDir|0o755)
}

func (f *fakeFS) file(path, content string) {
	f.addChild(path, 0o644)
	f.contents[path] = content
}

func (f *fakeFS) symlink(path, target string) {
	f.addChild(path, os.ModeSymlink|0o777)
	f.links[path] = target
}

func (f *fakeFS) ReadDir(path string) ([]os.FileInfo, error) {
	f.calls = append(f.calls, "readdir "+path)
	if err := f.fail["readdir "+path]; err != nil {
		return nil, err
	}
	if target, ok := f.links[path]; ok {
		return f.ReadDir(target)
	}
	list, ok := f.children[path]
	if !ok {
		return nil, &os.PathError{Op: "readdir", Path: path, Err: os.ErrNotExist}
	}
	out := make([]os.FileInfo, 0, len(list))
	for _, c := range list {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeFS) CopyFile(src, dst string) error {
	f.calls = append(f.calls, "copy "+src+" "+dst)
	if err := f.fail["copy "+src]; err != nil {
		return err
	}
	content, ok := f.contents[src]
	if !ok {
		return &os.PathError{Op: "open", Path: src, Err: os.ErrNotExist}
	}
	f.file(dst, content)
	return nil
}

func (f *fakeFS) Remove(path string) error {
	f.calls = append(f.calls, "remove "+path)
	if err := f.fail["remove "+path]; err != nil {
		return err
	}
	if list, ok := f.children[path]; ok {
		if len(list) > 0 {
			return errors.New("directory not empty")
		}
		delete(f.children, path)
	} else if _, ok := f.contents[path]; ok {
		delete(f.contents, path)
	} else {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}

	dir := filepath.Dir(path)
	list := f.children[dir]
	for i, c := range list {
		if c.name == filepath.Base(path) {
			f.children[dir] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// paths returns every file and directory below root, sorted; directories end
// with a slash.
func (f *fakeFS) paths() []string {
	var out []string
	for dir, list := range f.children {
		for _, c := range list {
			p := filepath.Join(dir, c.name)
			if c.mode.IsDir() {
				p += "/"
			}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

type recordingObserver struct {
	found []string
	moved []Move
}

func (r *recordingObserver) MarkerFound(path string) { r.found = append(r.found, path) }
func (r *recordingObserver) MarkerMoved(m Move)      { r.moved = append(r.moved, m) }
