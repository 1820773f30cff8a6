package diskkit

import (
	"errors"
	"fmt"
)

// Closed error taxonomy. Every backend translates its native failure
// signals into one of these sentinels; anything that does not match a
// known signal propagates unchanged.
var (
	// ErrNotFound indicates the requested file or directory does not exist.
	ErrNotFound = errors.New("file does not exist")

	// ErrNotAFile indicates the target exists but is a directory where a
	// file was expected.
	ErrNotAFile = errors.New("not a file")

	// ErrNotADirectory indicates a path component or listing target is not
	// a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotWritable indicates the destination cannot be written: the
	// target is a directory, a path component collides with a file, or the
	// backend denied write permission.
	ErrNotWritable = errors.New("destination is not writable")

	// ErrBadDriver indicates a disk specification names an unregistered
	// driver.
	ErrBadDriver = errors.New("unknown driver")

	// ErrDiskNotFound indicates a disk name could not be resolved to a
	// concrete specification (absent, or the alias chain was exhausted).
	ErrDiskNotFound = errors.New("disk not found")

	// ErrReadOnly is returned when a write operation is attempted on a
	// read-only disk.
	ErrReadOnly = errors.New("disk is read-only")

	// ErrNotSupported indicates the backend does not implement an optional
	// capability.
	ErrNotSupported = errors.New("operation not supported")
)

// PathError records an error and the operation and virtual path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a PathError for the given operation and path.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// WrapPathErr is a convenience form of NewPathError that reads better at
// call sites returning the wrapped error directly.
func WrapPathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether an error indicates that a file or directory
// does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotAFile reports whether an error indicates the target is a directory
// where a file was expected
func IsNotAFile(err error) bool {
	return errors.Is(err, ErrNotAFile)
}

// IsNotADirectory reports whether an error indicates the target is not a
// directory
func IsNotADirectory(err error) bool {
	return errors.Is(err, ErrNotADirectory)
}

// IsNotWritable reports whether an error indicates an unwritable destination
func IsNotWritable(err error) bool {
	return errors.Is(err, ErrNotWritable)
}

// IsBadDriver reports whether an error indicates an unregistered driver tag
func IsBadDriver(err error) bool {
	return errors.Is(err, ErrBadDriver)
}

// IsDiskNotFound reports whether an error indicates an unresolvable disk name
func IsDiskNotFound(err error) bool {
	return errors.Is(err, ErrDiskNotFound)
}

// IsReadOnlyError checks if an error is due to read-only restrictions.
func IsReadOnlyError(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// IsNotSupportedError reports whether an error indicates an unimplemented
// optional capability
func IsNotSupportedError(err error) bool {
	return errors.Is(err, ErrNotSupported)
}
