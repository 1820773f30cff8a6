package diskkit

import (
	"sync"
)

// Global manager instance
var (
	defaultManager *Manager
	defaultOnce    sync.Once
	defaultErr     error
)

// Init initializes the global manager. With no argument the configuration is
// loaded from the environment.
func Init(configs ...ManagerConfig) error {
	defaultOnce.Do(func() {
		var cfg ManagerConfig
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = ManagerConfigFromEnv()
			if defaultErr != nil {
				return
			}
		}

		defaultManager, defaultErr = NewManager(cfg)
	})

	return defaultErr
}

// Disks returns the global manager, initializing it from the environment if
// needed.
func Disks() (*Manager, error) {
	if defaultManager == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultManager, nil
}

// Use returns the named disk from the global manager.
func Use(name string) (Disk, error) {
	m, err := Disks()
	if err != nil {
		return nil, err
	}
	return m.Disk(name)
}

// Default returns the global default disk.
func Default() (Disk, error) {
	return Use(DefaultDiskName)
}

// Reset clears the global manager (for testing)
func Reset() {
	defaultManager = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
