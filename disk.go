package diskkit

import (
	"context"
	"io"
	"time"
)

// EntryType classifies a listing entry.
type EntryType string

const (
	// EntryTypeFile marks a regular file entry.
	EntryTypeFile EntryType = "file"
	// EntryTypeDirectory marks a directory entry.
	EntryTypeDirectory EntryType = "directory"
)

// Entry is a single directory-listing result. Name is the entry's base name
// relative to the listed directory, never a full path; directory names carry
// exactly one trailing "/".
type Entry struct {
	Name string
	Type EntryType
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Type == EntryTypeDirectory
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// DiskReader provides read-only disk access.
// Use this type in function signatures to enforce read-only at compile time.
type DiskReader interface {
	// Read reads the entire file at path into memory. Use for small files
	// only; use ReadStream for large payloads.
	Read(ctx context.Context, path string) ([]byte, error)

	// ReadStream returns a stream for reading file content. Existence is
	// verified before the stream is opened.
	ReadStream(ctx context.Context, path string) (io.ReadCloser, error)

	// List returns the entries of the directory at path. An empty path
	// lists the disk root. Directories are listed before files, each group
	// preserving the backend's native order.
	List(ctx context.Context, path string) ([]Entry, error)
}

// DiskWriter provides write disk operations.
type DiskWriter interface {
	// Write writes content to path, creating any missing parent
	// directories and truncating an existing file.
	// Use bytes.NewReader(data) for []byte, os.Open() for local files.
	Write(ctx context.Context, path string, content io.Reader, opts ...Option) error

	// WriteStream opens a stream for writing to path. Parent directories
	// are created first; errors about the target itself surface from the
	// stream, not from this call.
	WriteStream(ctx context.Context, path string, opts ...Option) (io.WriteCloser, error)

	// Delete removes exactly one file.
	Delete(ctx context.Context, path string) error
}

// Disk is a named, configured handle to a storage backend. All paths are
// virtual: "/"-separated, resolved against the disk's root, and unable to
// escape it.
type Disk interface {
	DiskReader
	DiskWriter

	// Name returns the canonical resolved disk name assigned by the
	// manager, or "" for disks constructed directly.
	Name() string
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Backends expose optional capabilities through extra interfaces.
// Use type assertion to check for support:
//
//	if signer, ok := disk.(CanSignURL); ok {
//	    url, err := signer.SignedURL(ctx, "file.pdf", 15*time.Minute)
//	}

// CanSignURL indicates the disk can generate pre-signed URLs.
// Useful for object stores - allows direct client access without proxying.
type CanSignURL interface {
	// SignedURL creates a pre-signed URL for downloading a file.
	SignedURL(ctx context.Context, path string, expires time.Duration) (string, error)

	// SignedUploadURL creates a pre-signed URL for uploading a file.
	SignedUploadURL(ctx context.Context, path string, expires time.Duration) (string, error)
}

// CanWatch indicates the disk supports file change notifications.
// Not all backends support watching - check with type assertion.
type CanWatch interface {
	// Watch creates a change token for the specified filter pattern.
	// Supports glob patterns: "**/*.txt", "config/*", "*.json", etc.
	Watch(ctx context.Context, pattern string) (ChangeToken, error)
}

// CanStat indicates the disk can report metadata for a single path.
type CanStat interface {
	// Stat returns size, modification time and kind for the entry at path.
	Stat(ctx context.Context, path string) (EntryInfo, error)
}
