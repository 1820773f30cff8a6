package diskkit

import (
	"fmt"
	"sync"
)

// DriverFactory builds a Disk from a resolved disk name and its definition.
// The name is the canonical resolved name the manager registers the instance
// under; factories must bake it into the constructed disk.
type DriverFactory func(name string, def DiskDef) (Disk, error)

var (
	driverFactories = make(map[string]DriverFactory)
	factoryMutex    sync.RWMutex
)

// RegisterDriver registers a driver factory under its tag. Drivers
// self-register from init() so importing a driver package is enough to make
// its tag resolvable.
func RegisterDriver(tag string, factory DriverFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	driverFactories[tag] = factory
}

// CreateDisk constructs a disk instance from a concrete definition.
func CreateDisk(name string, def DiskDef) (Disk, error) {
	factoryMutex.RLock()
	factory, exists := driverFactories[def.Driver]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrBadDriver, def.Driver)
	}

	return factory(name, def)
}
