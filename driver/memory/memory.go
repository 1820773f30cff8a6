package memory

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gobeaver/diskkit"
	"github.com/gobwas/glob"
)

const maxLinkHops = 8

// memFile is a file stored in the volume.
type memFile struct {
	data    []byte
	modTime time.Time
}

// watchEntry is a single watch subscription.
type watchEntry struct {
	pattern glob.Glob
	token   *diskkit.CallbackChangeToken
}

// Volume is an isolated in-memory file tree implementing diskkit.FileOps.
// Every volume owns its own store; instances never share state. Paths are
// absolute, "/"-separated and cleaned. Symbolic links are supported so the
// listing normalizer can be exercised without touching a real filesystem.
type Volume struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]time.Time
	links map[string]string

	watchMu sync.RWMutex
	watches []*watchEntry
}

// NewVolume creates an empty volume containing only the root directory.
func NewVolume() *Volume {
	return &Volume{
		files: map[string]*memFile{},
		dirs:  map[string]time.Time{"/": time.Now()},
		links: map[string]string{},
	}
}

// norm brings any incoming path into the volume's canonical form.
func norm(p string) string {
	return path.Clean("/" + filepath.ToSlash(p))
}

func notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

// resolveLinks follows symlinks on the final path component, bounded by
// maxLinkHops. Callers must hold at least a read lock.
func (v *Volume) resolveLinks(p string) (string, error) {
	for hop := 0; hop < maxLinkHops; hop++ {
		target, ok := v.links[p]
		if !ok {
			return p, nil
		}
		if !strings.HasPrefix(target, "/") {
			target = path.Join(path.Dir(p), target)
		}
		p = norm(target)
	}
	return "", &fs.PathError{Op: "stat", Path: p, Err: syscall.ELOOP}
}

// ReadFile implements diskkit.FileOps.
func (v *Volume) ReadFile(_ context.Context, p string) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	p, err := v.resolveLinks(norm(p))
	if err != nil {
		return nil, err
	}
	if _, ok := v.dirs[p]; ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: syscall.EISDIR}
	}
	f, ok := v.files[p]
	if !ok {
		return nil, notExist("read", p)
	}
	return append([]byte(nil), f.data...), nil
}

// WriteFile implements diskkit.FileOps.
func (v *Volume) WriteFile(_ context.Context, p string, data []byte) error {
	p = norm(p)

	v.mu.Lock()
	resolved, err := v.resolveLinks(p)
	if err != nil {
		v.mu.Unlock()
		return err
	}
	if _, ok := v.dirs[resolved]; ok {
		v.mu.Unlock()
		return &fs.PathError{Op: "write", Path: p, Err: syscall.EISDIR}
	}
	if err := v.checkParentLocked("write", resolved); err != nil {
		v.mu.Unlock()
		return err
	}
	v.files[resolved] = &memFile{
		data:    append([]byte(nil), data...),
		modTime: time.Now(),
	}
	v.mu.Unlock()

	v.signal(resolved)
	return nil
}

// OpenRead implements diskkit.FileOps.
func (v *Volume) OpenRead(ctx context.Context, p string) (io.ReadCloser, error) {
	data, err := v.ReadFile(ctx, p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenWrite implements diskkit.FileOps. The write is committed to the
// volume when the stream is closed.
func (v *Volume) OpenWrite(ctx context.Context, p string) (io.WriteCloser, error) {
	p = norm(p)

	v.mu.RLock()
	resolved, err := v.resolveLinks(p)
	if err == nil {
		if _, ok := v.dirs[resolved]; ok {
			err = &fs.PathError{Op: "open", Path: p, Err: syscall.EISDIR}
		}
	}
	v.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	return &volumeWriter{ctx: ctx, vol: v, path: p}, nil
}

// ReadDir implements diskkit.FileOps. Entries come back in lexical order,
// the volume's native enumeration order.
func (v *Volume) ReadDir(_ context.Context, p string) ([]diskkit.DirEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	p, err := v.resolveLinks(norm(p))
	if err != nil {
		return nil, err
	}
	if _, ok := v.files[p]; ok {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: syscall.ENOTDIR}
	}
	if _, ok := v.dirs[p]; !ok {
		return nil, notExist("readdir", p)
	}

	children := map[string]diskkit.EntryKind{}
	collect := func(candidate string, kind diskkit.EntryKind) {
		rel, ok := childOf(p, candidate)
		if ok {
			if _, seen := children[rel]; !seen {
				children[rel] = kind
			}
		}
	}
	for f := range v.files {
		collect(f, diskkit.KindFile)
	}
	for d := range v.dirs {
		collect(d, diskkit.KindDir)
	}
	for l := range v.links {
		// Direct children that are links override the file/dir view.
		if rel, ok := childOf(p, l); ok && !strings.Contains(rel, "/") {
			children[rel] = diskkit.KindSymlink
		}
	}

	names := make([]string, 0, len(children))
	for name := range children {
		if !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]diskkit.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, diskkit.DirEntry{Name: name, Kind: children[name]})
	}
	return entries, nil
}

// Stat implements diskkit.FileOps, following symbolic links.
func (v *Volume) Stat(_ context.Context, p string) (diskkit.EntryInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	p, err := v.resolveLinks(norm(p))
	if err != nil {
		return diskkit.EntryInfo{}, err
	}
	if modTime, ok := v.dirs[p]; ok {
		return diskkit.EntryInfo{ModTime: modTime, Dir: true}, nil
	}
	if f, ok := v.files[p]; ok {
		return diskkit.EntryInfo{Size: int64(len(f.data)), ModTime: f.modTime}, nil
	}
	return diskkit.EntryInfo{}, notExist("stat", p)
}

// Remove implements diskkit.FileOps.
func (v *Volume) Remove(_ context.Context, p string) error {
	p = norm(p)

	v.mu.Lock()
	if _, ok := v.links[p]; ok {
		delete(v.links, p)
		v.mu.Unlock()
		v.signal(p)
		return nil
	}
	if _, ok := v.dirs[p]; ok {
		v.mu.Unlock()
		return &fs.PathError{Op: "remove", Path: p, Err: syscall.EISDIR}
	}
	if _, ok := v.files[p]; !ok {
		v.mu.Unlock()
		return notExist("remove", p)
	}
	delete(v.files, p)
	v.mu.Unlock()

	v.signal(p)
	return nil
}

// MkdirAll implements diskkit.FileOps.
func (v *Volume) MkdirAll(_ context.Context, p string) error {
	p = norm(p)

	v.mu.Lock()
	defer v.mu.Unlock()

	current := "/"
	for _, segment := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if segment == "" {
			continue
		}
		current = path.Join(current, segment)
		if _, ok := v.files[current]; ok {
			return &fs.PathError{Op: "mkdir", Path: current, Err: syscall.ENOTDIR}
		}
		if _, ok := v.dirs[current]; !ok {
			v.dirs[current] = time.Now()
		}
	}
	return nil
}

// Access implements diskkit.FileOps. It does not follow symlinks: a dangling
// link still exists as an entry.
func (v *Volume) Access(_ context.Context, p string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	p = norm(p)
	if _, ok := v.files[p]; ok {
		return nil
	}
	if _, ok := v.dirs[p]; ok {
		return nil
	}
	if _, ok := v.links[p]; ok {
		return nil
	}
	return notExist("access", p)
}

// Symlink creates a symbolic link at linkPath pointing at target. Relative
// targets resolve against the link's directory. The target need not exist.
func (v *Volume) Symlink(target, linkPath string) error {
	linkPath = norm(linkPath)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkParentLocked("symlink", linkPath); err != nil {
		return err
	}
	v.links[linkPath] = target
	return nil
}

// checkParentLocked verifies the parent of p exists and is a directory.
func (v *Volume) checkParentLocked(op, p string) error {
	parent := path.Dir(p)
	if _, ok := v.files[parent]; ok {
		return &fs.PathError{Op: op, Path: parent, Err: syscall.ENOTDIR}
	}
	if _, ok := v.dirs[parent]; !ok {
		return notExist(op, parent)
	}
	return nil
}

// childOf returns candidate's path relative to dir when candidate is a
// strict descendant of dir.
func childOf(dir, candidate string) (string, bool) {
	if candidate == dir {
		return "", false
	}
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(candidate, prefix) {
		return "", false
	}
	return strings.TrimPrefix(candidate, prefix), true
}

// signal notifies watch subscriptions about a change at p.
func (v *Volume) signal(p string) {
	rel := strings.TrimPrefix(p, "/")

	v.watchMu.RLock()
	defer v.watchMu.RUnlock()
	for _, w := range v.watches {
		if w.pattern.Match(rel) {
			w.token.SignalChange()
		}
	}
}

// volumeWriter buffers stream writes and commits them on Close.
type volumeWriter struct {
	ctx  context.Context
	vol  *Volume
	path string
	buf  bytes.Buffer
}

func (w *volumeWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *volumeWriter) Close() error {
	return w.vol.WriteFile(w.ctx, w.path, w.buf.Bytes())
}

// Adapter is an in-memory disk backed by an isolated Volume.
// Useful for testing and caching scenarios.
type Adapter struct {
	*diskkit.FileDisk
	vol *Volume
}

// New creates a new in-memory disk with a fresh, exclusively-owned volume.
func New() *Adapter {
	return newNamed("")
}

func newNamed(name string) *Adapter {
	vol := NewVolume()
	fd, err := diskkit.NewFileDisk(name, "/", vol)
	if err != nil {
		// Resolving "/" cannot fail.
		panic(err)
	}
	return &Adapter{FileDisk: fd, vol: vol}
}

// Volume returns the disk's backing volume.
func (a *Adapter) Volume() *Volume {
	return a.vol
}

// Symlink creates a symbolic link at the virtual linkPath pointing at target.
func (a *Adapter) Symlink(target, linkPath string) error {
	return a.vol.Symlink(target, "/"+diskkit.CleanVirtual(linkPath))
}

// Watch implements diskkit.CanWatch. The pattern is a glob matched against
// virtual paths ("**/*.json", "config/*", ...).
func (a *Adapter) Watch(_ context.Context, pattern string) (diskkit.ChangeToken, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}

	token := diskkit.NewCallbackChangeToken()
	a.vol.watchMu.Lock()
	a.vol.watches = append(a.vol.watches, &watchEntry{pattern: g, token: token})
	a.vol.watchMu.Unlock()

	return token, nil
}

// Ensure Adapter implements the disk contract
var (
	_ diskkit.Disk     = (*Adapter)(nil)
	_ diskkit.CanWatch = (*Adapter)(nil)
	_ diskkit.CanStat  = (*Adapter)(nil)
	_ diskkit.FileOps  = (*Volume)(nil)
)
