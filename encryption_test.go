package diskkit_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gobeaver/diskkit"
	"github.com/gobeaver/diskkit/driver/memory"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestEncryptedDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	enc, err := diskkit.NewEncryptedDisk(backend, testKey(1))
	if err != nil {
		t.Fatalf("NewEncryptedDisk: %v", err)
	}

	secret := []byte("top secret payload")
	if err := enc.Write(ctx, "secret.bin", bytes.NewReader(secret)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := enc.Read(ctx, "secret.bin")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("Read = %q, want %q", got, secret)
	}

	// The stored bytes are not the plaintext.
	raw, err := backend.Read(ctx, "secret.bin")
	if err != nil {
		t.Fatalf("backend Read: %v", err)
	}
	if bytes.Contains(raw, secret) {
		t.Error("stored content contains the plaintext")
	}
	if len(raw) <= len(secret) {
		t.Errorf("stored content length %d, want nonce+tag overhead over %d", len(raw), len(secret))
	}
}

func TestEncryptedDiskStreams(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	enc, err := diskkit.NewEncryptedDisk(backend, testKey(2))
	if err != nil {
		t.Fatalf("NewEncryptedDisk: %v", err)
	}

	wc, err := enc.WriteStream(ctx, "s.bin")
	if err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	if _, err := wc.Write([]byte("part one ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := wc.Write([]byte("part two")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rc, err := enc.ReadStream(ctx, "s.bin")
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "part one part two" {
		t.Errorf("ReadAll = %q", got)
	}
}

func TestEncryptedDiskWrongKey(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	writer, err := diskkit.NewEncryptedDisk(backend, testKey(3))
	if err != nil {
		t.Fatalf("NewEncryptedDisk: %v", err)
	}
	if err := writer.Write(ctx, "f.bin", strings.NewReader("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reader, err := diskkit.NewEncryptedDisk(backend, testKey(4))
	if err != nil {
		t.Fatalf("NewEncryptedDisk: %v", err)
	}
	if _, err := reader.Read(ctx, "f.bin"); !errors.Is(err, diskkit.ErrDecryption) {
		t.Errorf("Read with wrong key = %v, want ErrDecryption", err)
	}
}

func TestEncryptedDiskCorruptedContent(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	enc, err := diskkit.NewEncryptedDisk(backend, testKey(5))
	if err != nil {
		t.Fatalf("NewEncryptedDisk: %v", err)
	}

	if err := backend.Write(ctx, "junk.bin", strings.NewReader("xx")); err != nil {
		t.Fatalf("seed Write: %v", err)
	}
	if _, err := enc.Read(ctx, "junk.bin"); !errors.Is(err, diskkit.ErrDecryption) {
		t.Errorf("Read of junk = %v, want ErrDecryption", err)
	}
}

func TestNewEncryptedDiskKeyLength(t *testing.T) {
	if _, err := diskkit.NewEncryptedDisk(memory.New(), []byte("short")); err == nil {
		t.Error("NewEncryptedDisk accepted a short key")
	}
}
