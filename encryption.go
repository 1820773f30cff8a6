package diskkit

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrDecryption is returned when stored content cannot be authenticated or
// decrypted with the configured key.
var ErrDecryption = errors.New("decryption failed")

// EncryptedDisk wraps a Disk and transparently encrypts file content with
// AES-256-GCM. Each file is sealed as nonce || ciphertext; listing and
// deletion pass through untouched.
type EncryptedDisk struct {
	disk Disk
	gcm  cipher.AEAD
}

// NewEncryptedDisk creates an encrypting wrapper around a Disk. The key must
// be 32 bytes (AES-256).
func NewEncryptedDisk(disk Disk, key []byte) (*EncryptedDisk, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (got %d)", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &EncryptedDisk{disk: disk, gcm: gcm}, nil
}

// Unwrap returns the underlying Disk.
func (e *EncryptedDisk) Unwrap() Disk {
	return e.disk
}

// Name delegates to the underlying disk.
func (e *EncryptedDisk) Name() string {
	return e.disk.Name()
}

func (e *EncryptedDisk) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *EncryptedDisk) open(sealed []byte) ([]byte, error) {
	ns := e.gcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrDecryption
	}
	plaintext, err := e.gcm.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return plaintext, nil
}

// Read decrypts the file content.
func (e *EncryptedDisk) Read(ctx context.Context, path string) ([]byte, error) {
	sealed, err := e.disk.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.open(sealed)
}

// ReadStream decrypts the whole file and streams the plaintext. GCM
// authenticates the full payload, so decryption cannot begin before the
// content is complete.
func (e *EncryptedDisk) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	plaintext, err := e.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(plaintext)), nil
}

// List delegates to the underlying disk.
func (e *EncryptedDisk) List(ctx context.Context, path string) ([]Entry, error) {
	return e.disk.List(ctx, path)
}

// Write encrypts the content before writing.
func (e *EncryptedDisk) Write(ctx context.Context, path string, content io.Reader, opts ...Option) error {
	plaintext, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	sealed, err := e.seal(plaintext)
	if err != nil {
		return err
	}
	return e.disk.Write(ctx, path, bytes.NewReader(sealed), opts...)
}

// WriteStream buffers the plaintext and seals it when the stream is closed.
func (e *EncryptedDisk) WriteStream(ctx context.Context, path string, opts ...Option) (io.WriteCloser, error) {
	return &sealingWriter{ctx: ctx, disk: e, path: path, opts: opts}, nil
}

// Delete delegates to the underlying disk.
func (e *EncryptedDisk) Delete(ctx context.Context, path string) error {
	return e.disk.Delete(ctx, path)
}

type sealingWriter struct {
	ctx    context.Context
	disk   *EncryptedDisk
	path   string
	opts   []Option
	buf    bytes.Buffer
	closed bool
}

func (w *sealingWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write on closed stream")
	}
	return w.buf.Write(p)
}

func (w *sealingWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.disk.Write(w.ctx, w.path, bytes.NewReader(w.buf.Bytes()), w.opts...)
}

// Ensure EncryptedDisk implements the disk contract
var _ Disk = (*EncryptedDisk)(nil)
