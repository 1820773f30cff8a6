package diskkit

import (
	"context"
	"io"
)

// ============================================================================
// ReadOnlyDisk Decorator
// ============================================================================

// ReadOnlyDisk wraps a Disk to prevent all write operations.
// This is useful for:
// - Providing safe read-only access to sensitive data
// - Creating temporary read-only views of disks
// - Exposing disks to untrusted code
//
// Example:
//
//	disk, _ := local.New("/data")
//	readOnly := diskkit.NewReadOnlyDisk(disk)
//
//	// Read operations work normally
//	data, _ := readOnly.Read(ctx, "file.txt")
//
//	// Write operations return ErrReadOnly
//	err := readOnly.Write(ctx, "file.txt", reader)
type ReadOnlyDisk struct {
	disk Disk
	opts ReadOnlyOptions
}

// ReadOnlyOptions configures the ReadOnlyDisk behavior.
type ReadOnlyOptions struct {
	// AllowDelete permits file deletion in read-only mode.
	// Use with caution - typically you want this false.
	AllowDelete bool

	// OnWriteAttempt is called when a write operation is attempted.
	// If nil, the default behavior returns ErrReadOnly.
	// If this function returns nil, the write is allowed (use carefully).
	OnWriteAttempt func(op, path string) error
}

// ReadOnlyOption is a functional option for configuring ReadOnlyDisk.
type ReadOnlyOption func(*ReadOnlyOptions)

// WithAllowDelete allows file deletion in read-only mode.
func WithAllowDelete(allow bool) ReadOnlyOption {
	return func(o *ReadOnlyOptions) {
		o.AllowDelete = allow
	}
}

// WithWriteAttemptHandler sets a custom handler for write attempts.
func WithWriteAttemptHandler(handler func(op, path string) error) ReadOnlyOption {
	return func(o *ReadOnlyOptions) {
		o.OnWriteAttempt = handler
	}
}

// NewReadOnlyDisk creates a read-only wrapper around a Disk. All write
// operations (Write, WriteStream, Delete) fail with ErrReadOnly unless
// configured otherwise via options.
func NewReadOnlyDisk(disk Disk, opts ...ReadOnlyOption) *ReadOnlyDisk {
	options := ReadOnlyOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return &ReadOnlyDisk{
		disk: disk,
		opts: options,
	}
}

// Unwrap returns the underlying Disk.
func (r *ReadOnlyDisk) Unwrap() Disk {
	return r.disk
}

// readOnlyError creates an appropriate error for write operations.
func (r *ReadOnlyDisk) readOnlyError(op, path string) error {
	if r.opts.OnWriteAttempt != nil {
		if err := r.opts.OnWriteAttempt(op, path); err != nil {
			return &PathError{Op: op, Path: path, Err: err}
		}
		// Handler returned nil, allow the operation
		return nil
	}
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// Name delegates to the underlying disk.
func (r *ReadOnlyDisk) Name() string {
	return r.disk.Name()
}

// Read delegates to the underlying disk.
func (r *ReadOnlyDisk) Read(ctx context.Context, path string) ([]byte, error) {
	return r.disk.Read(ctx, path)
}

// ReadStream delegates to the underlying disk.
func (r *ReadOnlyDisk) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.disk.ReadStream(ctx, path)
}

// List delegates to the underlying disk.
func (r *ReadOnlyDisk) List(ctx context.Context, path string) ([]Entry, error) {
	return r.disk.List(ctx, path)
}

// Write returns ErrReadOnly.
func (r *ReadOnlyDisk) Write(ctx context.Context, path string, content io.Reader, opts ...Option) error {
	if err := r.readOnlyError("write", path); err != nil {
		return err
	}
	return r.disk.Write(ctx, path, content, opts...)
}

// WriteStream returns ErrReadOnly.
func (r *ReadOnlyDisk) WriteStream(ctx context.Context, path string, opts ...Option) (io.WriteCloser, error) {
	if err := r.readOnlyError("write", path); err != nil {
		return nil, err
	}
	return r.disk.WriteStream(ctx, path, opts...)
}

// Delete returns ErrReadOnly unless AllowDelete is enabled.
func (r *ReadOnlyDisk) Delete(ctx context.Context, path string) error {
	if !r.opts.AllowDelete {
		if err := r.readOnlyError("delete", path); err != nil {
			return err
		}
	}
	return r.disk.Delete(ctx, path)
}

// Ensure ReadOnlyDisk implements the disk contract
var (
	_ Disk       = (*ReadOnlyDisk)(nil)
	_ DiskReader = (*ReadOnlyDisk)(nil)
)
