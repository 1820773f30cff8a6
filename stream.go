package diskkit

import (
	"context"
	"io"
	"os"
)

// Pipe drains src into dst, honoring context cancellation between chunks.
// It returns the number of bytes copied and the first error encountered on
// either side.
func Pipe(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if wn != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// LocalCopy materializes the file at path into a temporary local file, for
// operations requiring local random access. The returned cleanup removes the
// scratch file; callers must invoke it when done.
func LocalCopy(ctx context.Context, d DiskReader, path string) (string, func() error, error) {
	rc, err := d.ReadStream(ctx, path)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "diskkit-*")
	if err != nil {
		return "", nil, err
	}

	if _, err := Pipe(ctx, tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	name := tmp.Name()
	cleanup := func() error {
		return os.Remove(name)
	}
	return name, cleanup, nil
}
