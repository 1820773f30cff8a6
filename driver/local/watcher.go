package local

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gobeaver/diskkit"
)

// Watch implements diskkit.CanWatch using fsnotify. The returned token
// signals once when any file under the root matching the pattern is created,
// modified, renamed or removed. The watcher shuts down after the first
// signal or when the context is cancelled.
func (a *Adapter) Watch(ctx context.Context, pattern string) (diskkit.ChangeToken, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// fsnotify does not recurse; register every directory under the root.
	root := a.Root()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	token := diskkit.NewCallbackChangeToken()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Newly created directories must be tracked too.
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				if matchesPattern(root, event.Name, pattern) {
					token.SignalChange()
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return token, nil
}

// matchesPattern matches an absolute event path against a virtual glob
// pattern. "**/" prefixes match any directory depth; the remainder uses
// path.Match semantics.
func matchesPattern(root, eventPath, pattern string) bool {
	rel, err := filepath.Rel(root, eventPath)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if pattern == "" || pattern == "**" || pattern == "**/*" {
		return true
	}

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matched, _ := path.Match(rest, path.Base(rel)); matched {
			return true
		}
		matched, _ := path.Match(rest, rel)
		return matched
	}

	matched, _ := path.Match(pattern, rel)
	return matched
}
