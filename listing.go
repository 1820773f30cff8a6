package diskkit

import (
	"context"
	"errors"
	"io/fs"

	"golang.org/x/sync/errgroup"
)

// statFunc resolves an entry name (relative to the listed directory) to the
// info of its target, following symbolic links.
type statFunc func(ctx context.Context, name string) (EntryInfo, error)

// normalizeEntries merges raw directory entries for one level into the
// public listing shape: symbolic links are classified through one stat
// indirection, broken links and unknown kinds are dropped, directories come
// before files, and each group keeps the backend's original order.
//
// Symlink stats are issued concurrently to hide latency; results are
// reassembled by original entry index so ordering stays deterministic.
func normalizeEntries(ctx context.Context, raw []DirEntry, stat statFunc) ([]Entry, error) {
	kinds := make([]EntryKind, len(raw))
	keep := make([]bool, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range raw {
		switch entry.Kind {
		case KindFile, KindDir:
			kinds[i] = entry.Kind
			keep[i] = true
		case KindSymlink:
			g.Go(func() error {
				info, err := stat(gctx, entry.Name)
				if err != nil {
					// A vanished target just drops the entry.
					if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNotFound) {
						return nil
					}
					return err
				}
				if info.Dir {
					kinds[i] = KindDir
				} else {
					kinds[i] = KindFile
				}
				keep[i] = true
				return nil
			})
		default:
			// Sockets, devices and other unknowns are not listable.
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(raw))
	for i, entry := range raw {
		if keep[i] && kinds[i] == KindDir {
			out = append(out, Entry{Name: entry.Name + "/", Type: EntryTypeDirectory})
		}
	}
	for i, entry := range raw {
		if keep[i] && kinds[i] == KindFile {
			out = append(out, Entry{Name: entry.Name, Type: EntryTypeFile})
		}
	}
	return out, nil
}
