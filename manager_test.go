package diskkit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gobeaver/diskkit"
	_ "github.com/gobeaver/diskkit/driver/memory"
)

func memConfig() diskkit.ManagerConfig {
	return diskkit.ManagerConfig{
		"default": {Alias: "foo"},
		"foo":     {Driver: "memory"},
		"bar":     {Alias: "foo"},
	}
}

func TestManagerAliasResolution(t *testing.T) {
	m, err := diskkit.NewManager(memConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	resolved, def, ok := m.Resolve("bar")
	if !ok {
		t.Fatal("Resolve(bar) failed")
	}
	if resolved != "foo" {
		t.Errorf("resolved name = %q, want %q", resolved, "foo")
	}
	if def.Driver != "memory" {
		t.Errorf("resolved driver = %q, want %q", def.Driver, "memory")
	}
}

func TestManagerSharedInstance(t *testing.T) {
	m, err := diskkit.NewManager(memConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// "default", "foo" and "bar" all resolve to the same canonical name and
	// therefore the same instance.
	byDefault, err := m.Disk("default")
	if err != nil {
		t.Fatalf("Disk(default): %v", err)
	}
	byAlias, err := m.Disk("bar")
	if err != nil {
		t.Fatalf("Disk(bar): %v", err)
	}
	direct, err := m.Disk("foo")
	if err != nil {
		t.Fatalf("Disk(foo): %v", err)
	}

	if byDefault != direct || byAlias != direct {
		t.Error("aliased lookups returned distinct instances")
	}
	if got := byAlias.Name(); got != "foo" {
		t.Errorf("Name() = %q, want canonical %q", got, "foo")
	}

	// Shared state proves the instances are one disk.
	ctx := context.Background()
	if err := byDefault.Write(ctx, "shared.txt", bytes.NewReader([]byte("hi"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := byAlias.Read(ctx, "shared.txt")
	if err != nil {
		t.Fatalf("Read via alias: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("Read = %q, want %q", data, "hi")
	}
}

func TestManagerEmptyNameIsDefault(t *testing.T) {
	m, err := diskkit.NewManager(memConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	blank, err := m.Disk("")
	if err != nil {
		t.Fatalf("Disk(\"\"): %v", err)
	}
	def, err := m.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if blank != def {
		t.Error("Disk(\"\") and Default() returned distinct instances")
	}
}

func TestManagerUnknownDisk(t *testing.T) {
	m, err := diskkit.NewManager(memConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Disk("nope"); !diskkit.IsDiskNotFound(err) {
		t.Errorf("Disk(nope) = %v, want ErrDiskNotFound", err)
	}
}

func TestManagerUnknownDriver(t *testing.T) {
	m, err := diskkit.NewManager(diskkit.ManagerConfig{
		"default": {Driver: "memory"},
		"weird":   {Driver: "carrier-pigeon"},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Disk("weird"); !diskkit.IsBadDriver(err) {
		t.Errorf("Disk(weird) = %v, want ErrBadDriver", err)
	}
}

func TestManagerAliasCycle(t *testing.T) {
	m, err := diskkit.NewManager(diskkit.ManagerConfig{
		"default": {Driver: "memory"},
		"a":       {Alias: "b"},
		"b":       {Alias: "a"},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Disk("a"); !diskkit.IsDiskNotFound(err) {
		t.Errorf("Disk(a) over a cycle = %v, want ErrDiskNotFound", err)
	}
}

func TestManagerDanglingAlias(t *testing.T) {
	m, err := diskkit.NewManager(diskkit.ManagerConfig{
		"default": {Driver: "memory"},
		"ghost":   {Alias: "missing"},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Disk("ghost"); !diskkit.IsDiskNotFound(err) {
		t.Errorf("Disk(ghost) = %v, want ErrDiskNotFound", err)
	}
}

func TestNewManagerRequiresDefault(t *testing.T) {
	tests := []struct {
		name string
		cfg  diskkit.ManagerConfig
	}{
		{"missing default", diskkit.ManagerConfig{"foo": {Driver: "memory"}}},
		{"default alias dangles", diskkit.ManagerConfig{"default": {Alias: "nowhere"}}},
		{"default alias cycles", diskkit.ManagerConfig{
			"default": {Alias: "loop"},
			"loop":    {Alias: "default"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := diskkit.NewManager(tt.cfg); !diskkit.IsDiskNotFound(err) {
				t.Errorf("NewManager = %v, want ErrDiskNotFound", err)
			}
		})
	}
}

func TestManagerOptionsFirstConstructionWins(t *testing.T) {
	m, err := diskkit.NewManager(diskkit.ManagerConfig{
		"default": {Driver: "memory"},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	first, err := m.Disk("default")
	if err != nil {
		t.Fatalf("Disk: %v", err)
	}
	// A later call with options still returns the cached instance.
	second, err := m.Disk("default", diskkit.WithClient(struct{}{}))
	if err != nil {
		t.Fatalf("Disk with option: %v", err)
	}
	if first != second {
		t.Error("options on a cached name produced a new instance")
	}
}

func TestManagerNames(t *testing.T) {
	m, err := diskkit.NewManager(memConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	names := m.Names()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"default", "foo", "bar"} {
		if !seen[want] {
			t.Errorf("Names() missing %q: %v", want, names)
		}
	}
}
