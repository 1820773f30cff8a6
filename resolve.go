package diskkit

import (
	"path"
	"path/filepath"
	"strings"
)

// CleanVirtual normalizes a virtual path to its contained form: rooted at a
// synthetic "/", "." and ".." segments collapsed with posix semantics so that
// traversal above the root clamps instead of escaping. The result never
// starts with "/" and is "" for the root itself.
func CleanVirtual(virtual string) string {
	cleaned := path.Clean("/" + virtual)
	return strings.TrimPrefix(cleaned, "/")
}

// ResolveWithin maps a virtual path onto a real root directory. The returned
// path is always root itself or a descendant of root, regardless of leading
// separators, ".." runs, or empty segments in the input. The root is
// OS-specific; the virtual layer is always "/"-separated.
func ResolveWithin(root, virtual string) string {
	contained := CleanVirtual(virtual)
	if contained == "" {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(contained))
}
