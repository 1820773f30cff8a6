package diskkit_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gobeaver/diskkit"
	"github.com/gobeaver/diskkit/driver/memory"
)

func TestMemoryCache(t *testing.T) {
	c := diskkit.NewMemoryCache()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	c.Set("k", "v", 0)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %v, %v", v, ok)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Get after Delete reported a hit")
	}

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Clear reported a hit")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := diskkit.NewMemoryCache()
	c.Set("k", "v", time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := c.Get("k"); !ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("entry never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCachedDiskRead(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	cached := diskkit.NewCachedDisk(backend)

	if err := backend.Write(ctx, "a.txt", strings.NewReader("v1")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, _ := cached.Read(ctx, "a.txt"); string(got) != "v1" {
		t.Fatalf("Read = %q", got)
	}

	// A write bypassing the decorator is invisible until invalidation.
	if err := backend.Write(ctx, "a.txt", strings.NewReader("v2")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, _ := cached.Read(ctx, "a.txt"); string(got) != "v1" {
		t.Errorf("Read = %q, want stale %q", got, "v1")
	}

	// A write through the decorator invalidates.
	if err := cached.Write(ctx, "a.txt", strings.NewReader("v3")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, _ := cached.Read(ctx, "a.txt"); string(got) != "v3" {
		t.Errorf("Read after invalidation = %q, want %q", got, "v3")
	}
}

func TestCachedDiskList(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	cached := diskkit.NewCachedDisk(backend)

	if err := cached.Write(ctx, "dir/a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := cached.List(ctx, "dir")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List = %v", entries)
	}

	// Writing a sibling through the decorator drops the parent listing.
	if err := cached.Write(ctx, "dir/b.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err = cached.List(ctx, "dir")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("List after sibling write = %v, want 2 entries", entries)
	}
}

func TestCachedDiskDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	cached := diskkit.NewCachedDisk(backend)

	if err := cached.Write(ctx, "gone.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := cached.Read(ctx, "gone.txt"); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if err := cached.Delete(ctx, "gone.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cached.Read(ctx, "gone.txt"); !diskkit.IsNotFound(err) {
		t.Errorf("Read after delete = %v, want ErrNotFound", err)
	}
}

func TestCachedDiskWriteStreamInvalidates(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	cached := diskkit.NewCachedDisk(backend)

	if err := cached.Write(ctx, "s.txt", strings.NewReader("old")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := cached.Read(ctx, "s.txt"); err != nil {
		t.Fatalf("Read: %v", err)
	}

	wc, err := cached.WriteStream(ctx, "s.txt")
	if err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	if _, err := wc.Write([]byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, _ := cached.Read(ctx, "s.txt"); string(got) != "new" {
		t.Errorf("Read after stream close = %q, want %q", got, "new")
	}
}

func TestCachedDiskUnwrap(t *testing.T) {
	backend := memory.New()
	cached := diskkit.NewCachedDisk(backend, diskkit.WithCacheTTL(0), diskkit.WithCache(diskkit.NewMemoryCache()))
	if cached.Unwrap() != diskkit.Disk(backend) {
		t.Error("Unwrap did not return the wrapped disk")
	}
}
