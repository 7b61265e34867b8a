// Package fsys adapts go-billy filesystems to the operations the migrator needs.
package fsys

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS wraps a billy.Filesystem.
type FS struct {
	fs billy.Filesystem
}

// nativeOS is an unrooted OS filesystem: paths are handed to the os package as-is.
type nativeOS struct {
	osfs.ChrootOS
}

// Chroot returns a new filesystem rooted at path.
//
//nolint:ireturn // signature is dictated by billy.Chroot.
func (n *nativeOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (n *nativeOS) Root() string {
	return "/"
}

// NewFS creates a new FS using the given go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewOSFS creates a filesystem that resolves paths exactly like the os package,
// relative paths included.
func NewOSFS() *FS {
	return &FS{fs: &nativeOS{}}
}

// NewInMemoryFS creates a new in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{fs: memfs.New()}
}

// ReadDir lists the immediate children of dirname without following
// symlinks among them.
func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dirname, err)
	}
	return list, nil
}

// CopyFile copies src to dst, keeping the permission bits of src.
// An existing dst is truncated and overwritten.
func (b *FS) CopyFile(src, dst string) error {
	in, err := b.fs.Open(src)
	if err != nil {
		return fmt.Errorf("billy: open %q: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := b.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("billy: stat %q: %w", src, err)
	}

	out, err := b.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("billy: openfile %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("billy: copy %q to %q: %w", src, dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", dst, err)
	}
	return nil
}

// Remove removes a file or an empty directory.
func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// Stat returns info about name, following symlinks.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return info, nil
}

// Lstat returns info about name without following a trailing symlink.
func (b *FS) Lstat(name string) (os.FileInfo, error) {
	info, err := b.fs.Lstat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: lstat %q: %w", name, err)
	}
	return info, nil
}

// Exists reports whether path exists.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: lstat %q: %w", path, err)
	}
}

// MkdirAll creates path and any missing parents.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// ReadFile returns the contents of path.
func (b *FS) ReadFile(path string) ([]byte, error) {
	bts, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, err)
	}
	return bts, nil
}

// WriteFile writes data to filename, creating parent directories as needed.
func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	return nil
}

// Symlink creates link pointing at target.
func (b *FS) Symlink(target, link string) error {
	if err := b.fs.Symlink(target, link); err != nil {
		return fmt.Errorf("billy: symlink %q -> %q: %w", link, target, err)
	}
	return nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}
