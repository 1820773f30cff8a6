package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobeaver/diskkit"
)

// fileOps implements diskkit.FileOps over the local OS filesystem. Context
// cancellation is handled by the generic disk before each primitive call, so
// the primitives stay thin wrappers around the os package.
type fileOps struct{}

func (fileOps) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fileOps) WriteFile(_ context.Context, path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (fileOps) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (fileOps) OpenWrite(_ context.Context, path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (fileOps) ReadDir(_ context.Context, path string) ([]diskkit.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	raw := make([]diskkit.DirEntry, 0, len(entries))
	for _, entry := range entries {
		raw = append(raw, diskkit.DirEntry{
			Name: entry.Name(),
			Kind: kindOf(entry.Type()),
		})
	}
	return raw, nil
}

func (fileOps) Stat(_ context.Context, path string) (diskkit.EntryInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return diskkit.EntryInfo{}, err
	}
	return diskkit.EntryInfo{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Dir:     info.IsDir(),
	}, nil
}

func (fileOps) Remove(_ context.Context, path string) error {
	return os.Remove(path)
}

func (fileOps) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, 0o755)
}

func (fileOps) Access(_ context.Context, path string) error {
	_, err := os.Lstat(path)
	return err
}

func kindOf(mode fs.FileMode) diskkit.EntryKind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return diskkit.KindSymlink
	case mode.IsDir():
		return diskkit.KindDir
	case mode.IsRegular():
		return diskkit.KindFile
	default:
		return diskkit.KindOther
	}
}

// Adapter is a local-filesystem disk rooted at a directory. All virtual
// paths are contained under the root.
type Adapter struct {
	*diskkit.FileDisk
}

// New creates a local disk rooted at root, creating the directory if needed.
func New(root string) (*Adapter, error) {
	return newNamed("", root)
}

func newNamed(name, root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, err
	}

	fd, err := diskkit.NewFileDisk(name, absRoot, fileOps{})
	if err != nil {
		return nil, err
	}
	return &Adapter{FileDisk: fd}, nil
}

// Ensure Adapter implements the disk contract
var (
	_ diskkit.Disk     = (*Adapter)(nil)
	_ diskkit.CanWatch = (*Adapter)(nil)
	_ diskkit.CanStat  = (*Adapter)(nil)
)
