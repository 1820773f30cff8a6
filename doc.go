// Package diskkit provides a uniform storage abstraction for Go: one disk
// contract for reading, writing, listing, and deleting objects across
// heterogeneous backends, plus a manager that resolves named (possibly
// aliased) configurations into concrete, cached backend instances.
//
// All paths handed to a disk are virtual: "/"-separated, resolved against
// the disk's configured root, and incapable of escaping it no matter how
// many ".." segments or leading slashes they contain.
//
// # Storage Backends
//
// Backends live in separate driver modules so applications only pull the
// dependencies of the backends they use:
//
//   - Local filesystem (github.com/gobeaver/diskkit/driver/local)
//   - In-memory (github.com/gobeaver/diskkit/driver/memory)
//   - Amazon S3 / S3-compatible stores (github.com/gobeaver/diskkit/driver/s3)
//
// # Basic Usage
//
//	import "github.com/gobeaver/diskkit/driver/local"
//
//	disk, err := local.New("./storage")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//
//	// Write a file (parent directories are created automatically)
//	err = disk.Write(ctx, "posts/hello.md", strings.NewReader("# Hello"))
//
//	// Read it back
//	data, err := disk.Read(ctx, "posts/hello.md")
//
//	// List a directory: directories first, then files
//	entries, err := disk.List(ctx, "posts")
//
//	// Delete a file
//	err = disk.Delete(ctx, "posts/hello.md")
//
// # Disk Manager
//
// The [Manager] resolves disk names against a configuration map. Entries
// are either concrete {driver, config} definitions or aliases pointing at
// other names. Each resolved name is constructed exactly once and cached:
//
//	manager, err := diskkit.NewManager(diskkit.ManagerConfig{
//	    "default": {Alias: "assets"},
//	    "assets":  {Driver: "local", Config: map[string]string{"root": "./assets"}},
//	    "uploads": {Driver: "s3", Config: map[string]string{"bucket": "my-uploads"}},
//	})
//
//	disk, err := manager.Disk("default") // same instance as manager.Disk("assets")
//	disk.Name()                          // "assets" - always the resolved name
//
// # Error Handling
//
// Failures are translated into a small closed taxonomy of sentinel errors
// checked with errors.Is or the predicate helpers:
//
//	_, err := disk.Read(ctx, "missing.txt")
//	if diskkit.IsNotFound(err) {
//	    // file does not exist
//	}
//
//	var pathErr *diskkit.PathError
//	if errors.As(err, &pathErr) {
//	    fmt.Printf("op=%s path=%s\n", pathErr.Op, pathErr.Path)
//	}
//
// Backend errors that do not match a known signal propagate unchanged so no
// diagnostic information is lost.
//
// # Decorators
//
// Cross-cutting concerns stack as decorators over any Disk:
//
//	// Read-only protection
//	readOnly := diskkit.NewReadOnlyDisk(disk)
//
//	// Content caching
//	cached := diskkit.NewCachedDisk(disk, diskkit.WithCacheTTL(5*time.Minute))
//
//	// Encryption (AES-256-GCM)
//	encrypted, err := diskkit.NewEncryptedDisk(disk, key)
//
// # Optional Capabilities
//
// Backends may expose extra capabilities; check with type assertions:
//
//	if signer, ok := disk.(diskkit.CanSignURL); ok {
//	    url, err := signer.SignedURL(ctx, "file.pdf", 15*time.Minute)
//	}
//
//	if watcher, ok := disk.(diskkit.CanWatch); ok {
//	    token, err := watcher.Watch(ctx, "**/*.json")
//	    if token.HasChanged() {
//	        reloadConfig()
//	    }
//	}
//
// # Configuration
//
// The default disk can be configured via environment variables with the
// DISKKIT_ prefix and the global helpers:
//
//	diskkit.Init()               // loads DISKKIT_* from the environment
//	disk, err := diskkit.Default()
package diskkit
