package diskkit

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// WalkFunc is invoked for every entry encountered by Walk. The path is the
// entry's full virtual path relative to the disk root; directory paths carry
// the trailing "/". Returning SkipDir from a directory entry prevents
// descending into it.
type WalkFunc func(entryPath string, entry Entry) error

// SkipDir can be returned from a WalkFunc to skip a directory's contents.
var SkipDir = errors.New("skip this directory")

// Walk traverses the disk depth-first starting at root (""), calling fn for
// every entry. Within one directory, directories are visited before files,
// matching List's ordering.
func Walk(ctx context.Context, d DiskReader, root string, fn WalkFunc) error {
	entries, err := d.List(ctx, root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryPath := joinVirtual(root, entry.Name)
		if err := fn(entryPath, entry); err != nil {
			if err == SkipDir {
				continue
			}
			return err
		}
		if entry.IsDir() {
			if err := Walk(ctx, d, entryPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListGlob walks the disk from root and returns the virtual paths of all
// files whose path matches the glob pattern. Patterns use "/" separators and
// support *, **, ?, [abc], {a,b}.
//
// Example:
//
//	paths, err := diskkit.ListGlob(ctx, disk, "", "reports/**/*.csv")
func ListGlob(ctx context.Context, d DiskReader, root, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}

	var matches []string
	err = Walk(ctx, d, root, func(entryPath string, entry Entry) error {
		if entry.IsDir() {
			return nil
		}
		if g.Match(entryPath) {
			matches = append(matches, entryPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// joinVirtual joins a directory path and an entry name without collapsing
// the entry's trailing separator.
func joinVirtual(dir, name string) string {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		return name
	}
	return path.Clean(dir) + "/" + name
}
