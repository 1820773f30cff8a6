package diskkit

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"syscall"
	"time"
)

// EntryKind tags a raw directory entry as reported by a backend, before
// normalization.
type EntryKind int

const (
	// KindOther covers entry types the listing cannot represent
	// (sockets, devices, ...). They are dropped during normalization.
	KindOther EntryKind = iota
	// KindFile is a regular file.
	KindFile
	// KindDir is a directory.
	KindDir
	// KindSymlink is a symbolic link whose target has not been resolved.
	KindSymlink
)

// DirEntry is one raw entry of a directory level.
type DirEntry struct {
	Name string
	Kind EntryKind
}

// EntryInfo is the stat result for a single entry.
type EntryInfo struct {
	Size    int64
	ModTime time.Time
	Dir     bool
}

// FileOps is the primitive capability set a filesystem-like backend must
// provide. Implementations report failures with io/fs-style errors
// (fs.ErrNotExist, fs.ErrPermission, syscall.ENOTDIR, ...); translation into
// the disk error taxonomy happens in FileDisk. Any backend exposing this set
// can be adapted into a Disk.
type FileOps interface {
	// ReadFile reads the whole file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile writes data to path, truncating an existing file.
	WriteFile(ctx context.Context, path string, data []byte) error

	// OpenRead opens path for streaming reads.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)

	// OpenWrite opens path for streaming writes, truncating an existing file.
	OpenWrite(ctx context.Context, path string) (io.WriteCloser, error)

	// ReadDir returns the raw entries of the directory at path in the
	// backend's native order.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Stat returns info for path, following symbolic links.
	Stat(ctx context.Context, path string) (EntryInfo, error)

	// Remove deletes the file at path.
	Remove(ctx context.Context, path string) error

	// MkdirAll creates the directory at path along with any missing parents.
	MkdirAll(ctx context.Context, path string) error

	// Access reports whether path exists; fs.ErrNotExist when it does not.
	Access(ctx context.Context, path string) error
}

// FileDisk implements Disk on top of any FileOps capability set. Virtual
// paths are chrooted under root: no input can resolve outside it.
//
// The root is resolved to an absolute path once at construction and is
// immutable afterwards.
type FileDisk struct {
	name string
	root string
	ops  FileOps
}

// NewFileDisk creates a disk over the given capability set. The name is the
// canonical disk name assigned by a manager; pass "" when constructing
// directly.
func NewFileDisk(name, root string, ops FileOps) (*FileDisk, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &FileDisk{name: name, root: absRoot, ops: ops}, nil
}

// Name implements Disk.
func (d *FileDisk) Name() string { return d.name }

// Root returns the resolved absolute root all virtual paths are contained in.
func (d *FileDisk) Root() string { return d.root }

// resolve maps a virtual path to its real, root-contained location.
func (d *FileDisk) resolve(virtual string) string {
	return ResolveWithin(d.root, virtual)
}

// Read implements DiskReader.
func (d *FileDisk) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	real := d.resolve(path)
	if err := d.wantFile(ctx, "read", path, real); err != nil {
		return nil, err
	}

	data, err := d.ops.ReadFile(ctx, real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapPathErr("read", path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// ReadStream implements DiskReader. Existence is checked before the stream
// is opened: some backends would otherwise create an empty file as a side
// effect of opening for read.
func (d *FileDisk) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	real := d.resolve(path)
	if err := d.wantFile(ctx, "read", path, real); err != nil {
		return nil, err
	}

	rc, err := d.ops.OpenRead(ctx, real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapPathErr("read", path, ErrNotFound)
		}
		return nil, err
	}
	return rc, nil
}

// Write implements DiskWriter. Missing parent directories are created;
// existing files are truncated, never appended to.
func (d *FileDisk) Write(ctx context.Context, path string, content io.Reader, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	real := d.resolve(path)
	if err := d.prepareWrite(ctx, "write", path, real); err != nil {
		return err
	}

	info, err := d.ops.Stat(ctx, real)
	if err == nil && info.Dir {
		return WrapPathErr("write", path, ErrNotWritable)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	if err := d.ops.WriteFile(ctx, real, data); err != nil {
		return translateWriteErr("write", path, err)
	}
	return nil
}

// WriteStream implements DiskWriter. Parent directories are created here,
// but the target itself is not pre-validated: a write to a directory path
// surfaces as the backend's raw open error. The buffer-based Write validates
// eagerly; the two paths are intentionally not unified.
func (d *FileDisk) WriteStream(ctx context.Context, path string, opts ...Option) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	real := d.resolve(path)
	if err := d.prepareWrite(ctx, "write", path, real); err != nil {
		return nil, err
	}

	return d.ops.OpenWrite(ctx, real)
}

// Stat implements CanStat, following symbolic links.
func (d *FileDisk) Stat(ctx context.Context, path string) (EntryInfo, error) {
	if err := ctx.Err(); err != nil {
		return EntryInfo{}, err
	}

	info, err := d.ops.Stat(ctx, d.resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EntryInfo{}, WrapPathErr("stat", path, ErrNotFound)
		}
		return EntryInfo{}, err
	}
	return info, nil
}

// Delete implements DiskWriter. Exactly one file entry is removed.
func (d *FileDisk) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	real := d.resolve(path)
	if err := d.wantFile(ctx, "delete", path, real); err != nil {
		return err
	}

	if err := d.ops.Remove(ctx, real); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return WrapPathErr("delete", path, ErrNotFound)
		}
		return err
	}
	return nil
}

// List implements DiskReader. An empty path lists the root.
func (d *FileDisk) List(ctx context.Context, path string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	real := d.resolve(path)
	info, err := d.ops.Stat(ctx, real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapPathErr("list", path, ErrNotFound)
		}
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, WrapPathErr("list", path, ErrNotADirectory)
		}
		return nil, err
	}
	if !info.Dir {
		return nil, WrapPathErr("list", path, ErrNotADirectory)
	}

	raw, err := d.ops.ReadDir(ctx, real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapPathErr("list", path, ErrNotFound)
		}
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, WrapPathErr("list", path, ErrNotADirectory)
		}
		return nil, err
	}

	return normalizeEntries(ctx, raw, func(ctx context.Context, name string) (EntryInfo, error) {
		return d.ops.Stat(ctx, filepath.Join(real, name))
	})
}

// wantFile verifies the target exists and is a regular file.
func (d *FileDisk) wantFile(ctx context.Context, op, path, real string) error {
	info, err := d.ops.Stat(ctx, real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return WrapPathErr(op, path, ErrNotFound)
		}
		return err
	}
	if info.Dir {
		return WrapPathErr(op, path, ErrNotAFile)
	}
	return nil
}

// prepareWrite creates the missing parents of the target. A path component
// that collides with an existing file makes the destination unwritable.
func (d *FileDisk) prepareWrite(ctx context.Context, op, path, real string) error {
	if err := d.ops.MkdirAll(ctx, filepath.Dir(real)); err != nil {
		return translateWriteErr(op, path, err)
	}
	return nil
}

// translateWriteErr maps backend write failures onto the taxonomy; unmatched
// errors propagate unchanged.
func translateWriteErr(op, path string, err error) error {
	if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR) ||
		errors.Is(err, fs.ErrPermission) {
		return WrapPathErr(op, path, ErrNotWritable)
	}
	return err
}

// Ensure FileDisk implements the disk contract
var (
	_ Disk       = (*FileDisk)(nil)
	_ DiskReader = (*FileDisk)(nil)
	_ DiskWriter = (*FileDisk)(nil)
	_ CanStat    = (*FileDisk)(nil)
)
