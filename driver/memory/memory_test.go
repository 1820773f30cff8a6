package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gobeaver/diskkit"
)

func TestVolumeIsolation(t *testing.T) {
	ctx := context.Background()
	a := New()
	b := New()

	if err := a.Write(ctx, "only-in-a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := b.Read(ctx, "only-in-a.txt"); !diskkit.IsNotFound(err) {
		t.Errorf("second volume sees the first volume's file: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := New()

	if err := d.Write(ctx, "a/b.txt", strings.NewReader("content")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := d.Read(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "content" {
		t.Errorf("Read = %q", got)
	}
}

func TestListLexicalOrder(t *testing.T) {
	ctx := context.Background()
	d := New()

	for _, p := range []string{"dir/c.txt", "dir/a.txt", "dir/b.txt", "dir/zsub/x.txt", "dir/asub/y.txt"} {
		if err := d.Write(ctx, p, strings.NewReader("x")); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	entries, err := d.List(ctx, "dir")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"asub/", "zsub/", "a.txt", "b.txt", "c.txt"}
	if len(entries) != len(want) {
		t.Fatalf("List = %v, want %v", entries, want)
	}
	for i, entry := range entries {
		if entry.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entry.Name, want[i])
		}
	}
}

func TestSymlinkListing(t *testing.T) {
	ctx := context.Background()
	d := New()

	if err := d.Write(ctx, "real/file.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Symlink("/real/file.txt", "links/to-file"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if err := d.Symlink("/real", "links/to-dir"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if err := d.Symlink("/nowhere", "links/dangling"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	entries, err := d.List(ctx, "links")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	// The link to a directory lists as a directory, the link to a file as a
	// file, and the dangling link is dropped.
	want := []diskkit.Entry{
		{Name: "to-dir/", Type: diskkit.EntryTypeDirectory},
		{Name: "to-file", Type: diskkit.EntryTypeFile},
	}
	if len(entries) != len(want) {
		t.Fatalf("List = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestSymlinkRead(t *testing.T) {
	ctx := context.Background()
	d := New()

	if err := d.Write(ctx, "real.txt", strings.NewReader("via link")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Symlink("real.txt", "alias.txt"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	got, err := d.Read(ctx, "alias.txt")
	if err != nil {
		t.Fatalf("Read through link: %v", err)
	}
	if string(got) != "via link" {
		t.Errorf("Read = %q", got)
	}
}

func TestSymlinkLoop(t *testing.T) {
	ctx := context.Background()
	d := New()

	if err := d.Symlink("/b", "a"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if err := d.Symlink("/a", "b"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	if _, err := d.Read(ctx, "a"); err == nil {
		t.Error("Read through a symlink loop succeeded")
	}
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	d := New()

	token, err := d.Watch(ctx, "config/*.json")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// A non-matching write does not signal.
	if err := d.Write(ctx, "other/file.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if token.HasChanged() {
		t.Error("token signalled on a non-matching path")
	}

	fired := make(chan struct{})
	token.RegisterChangeCallback(func() { close(fired) })

	if err := d.Write(ctx, "config/app.json", strings.NewReader("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("token never signalled")
	}
	if !token.HasChanged() {
		t.Error("HasChanged = false after signal")
	}
}

func TestWatchBadPattern(t *testing.T) {
	d := New()
	if _, err := d.Watch(context.Background(), "[unclosed"); err == nil {
		t.Error("Watch accepted a malformed pattern")
	}
}

func TestDeleteSymlinkKeepsTarget(t *testing.T) {
	ctx := context.Background()
	d := New()

	if err := d.Write(ctx, "real.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Symlink("real.txt", "alias.txt"); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	if err := d.Delete(ctx, "alias.txt"); err != nil {
		t.Fatalf("Delete link: %v", err)
	}
	if _, err := d.Read(ctx, "real.txt"); err != nil {
		t.Errorf("target vanished with the link: %v", err)
	}
}
