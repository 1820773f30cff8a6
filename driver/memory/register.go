package memory

import "github.com/gobeaver/diskkit"

func init() {
	diskkit.RegisterDriver("memory", func(name string, _ diskkit.DiskDef) (diskkit.Disk, error) {
		return newNamed(name), nil
	})
}
