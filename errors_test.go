package diskkit

import (
	"errors"
	"fmt"
	"testing"
)

func TestPathError(t *testing.T) {
	err := NewPathError("read", "docs/a.txt", ErrNotFound)

	if got, want := err.Error(), "read docs/a.txt: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is through PathError failed")
	}

	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As(*PathError) failed")
	}
	if pe.Op != "read" || pe.Path != "docs/a.txt" {
		t.Errorf("PathError fields = %q %q", pe.Op, pe.Path)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		pred func(error) bool
		err  error
	}{
		{"not found", IsNotFound, ErrNotFound},
		{"not a file", IsNotAFile, ErrNotAFile},
		{"not a directory", IsNotADirectory, ErrNotADirectory},
		{"not writable", IsNotWritable, ErrNotWritable},
		{"bad driver", IsBadDriver, ErrBadDriver},
		{"disk not found", IsDiskNotFound, ErrDiskNotFound},
		{"read only", IsReadOnlyError, ErrReadOnly},
		{"not supported", IsNotSupportedError, ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.err) {
				t.Error("predicate rejected its own sentinel")
			}
			if !tt.pred(WrapPathErr("op", "p", tt.err)) {
				t.Error("predicate rejected a wrapped sentinel")
			}
			if !tt.pred(fmt.Errorf("context: %w", tt.err)) {
				t.Error("predicate rejected a fmt-wrapped sentinel")
			}
			if tt.pred(errors.New("unrelated")) {
				t.Error("predicate accepted an unrelated error")
			}
			if tt.pred(nil) {
				t.Error("predicate accepted nil")
			}
		})
	}
}
