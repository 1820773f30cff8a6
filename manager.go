package diskkit

import (
	"fmt"
	"sync"
)

// DefaultDiskName is the configuration key every manager config must carry,
// resolving (possibly through aliases) to a concrete definition.
const DefaultDiskName = "default"

// maxAliasHops bounds alias chains. A chain longer than this (including
// cycles) makes the disk unresolvable.
const maxAliasHops = 16

// DiskDef is one entry of a manager configuration: either an alias pointing
// at another disk name, or a concrete {driver, config} specification.
type DiskDef struct {
	// Alias, when set, makes this entry a pointer to another disk name.
	// All other fields are ignored.
	Alias string

	// Driver selects the backend implementation ("local", "memory", "s3").
	Driver string

	// Config carries driver-specific settings (root, bucket, prefix, ...).
	Config map[string]string

	// Client optionally carries a pre-built backend client (e.g. an S3
	// client). Only honored on first construction of a resolved name.
	Client any
}

// ManagerConfig maps disk names to their definitions. The "default" entry is
// required and must resolve to a concrete definition.
type ManagerConfig map[string]DiskDef

// DiskOption adjusts a definition at Disk() call time. Options only take
// effect on the first construction of a resolved name; later calls return
// the cached instance regardless of differing options.
type DiskOption func(*DiskDef)

// WithClient supplies a pre-built backend client for first-time construction.
func WithClient(client any) DiskOption {
	return func(def *DiskDef) {
		def.Client = client
	}
}

// Manager resolves named (possibly aliased) disk configurations into
// concrete backend instances, constructing each resolved name exactly once
// and caching the instance for its own lifetime.
//
// The registry is guarded for map safety only; two concurrent first-time
// resolutions of the same name may both construct, in which case the last
// registration wins and the other instance is discarded. Disks are cheap
// stateless wrappers, so the race is benign.
type Manager struct {
	mu     sync.RWMutex
	config ManagerConfig
	disks  map[string]Disk
}

// NewManager creates a manager over the given configuration. The "default"
// entry must exist and resolve to a concrete definition.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	m := &Manager{
		config: cfg,
		disks:  make(map[string]Disk),
	}
	if _, _, ok := m.resolve(DefaultDiskName, maxAliasHops); !ok {
		return nil, fmt.Errorf("%w: %q must resolve to a concrete definition", ErrDiskNotFound, DefaultDiskName)
	}
	return m, nil
}

// resolve follows alias entries up to maxHops and returns the canonical name
// and its concrete definition. ok is false when the name is absent, the
// chain dangles, or the hop bound is exceeded.
func (m *Manager) resolve(name string, maxHops int) (string, DiskDef, bool) {
	for hop := 0; hop < maxHops; hop++ {
		def, exists := m.config[name]
		if !exists {
			return "", DiskDef{}, false
		}
		if def.Alias == "" {
			return name, def, true
		}
		name = def.Alias
	}
	return "", DiskDef{}, false
}

// Resolve returns the canonical name and concrete definition for a disk
// name, following aliases. ok is false when the name is unresolvable.
func (m *Manager) Resolve(name string) (resolved string, def DiskDef, ok bool) {
	return m.resolve(name, maxAliasHops)
}

// Disk returns the disk instance for name, constructing it on first use.
// Repeated calls for the same name, or for any alias resolving to the same
// name, return the identical instance; its Name() is always the canonical
// resolved name, never the alias used to request it.
func (m *Manager) Disk(name string, opts ...DiskOption) (Disk, error) {
	if name == "" {
		name = DefaultDiskName
	}

	resolved, def, ok := m.resolve(name, maxAliasHops)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDiskNotFound, name)
	}

	m.mu.RLock()
	disk := m.disks[resolved]
	m.mu.RUnlock()
	if disk != nil {
		return disk, nil
	}

	for _, opt := range opts {
		opt(&def)
	}

	disk, err := CreateDisk(resolved, def)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.disks[resolved] = disk
	m.mu.Unlock()

	return disk, nil
}

// Default returns the disk configured under "default".
func (m *Manager) Default(opts ...DiskOption) (Disk, error) {
	return m.Disk(DefaultDiskName, opts...)
}

// Names returns the configured disk names, aliases included.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.config))
	for name := range m.config {
		names = append(names, name)
	}
	return names
}
