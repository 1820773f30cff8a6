package local

import (
	"fmt"

	"github.com/gobeaver/diskkit"
)

func init() {
	diskkit.RegisterDriver("local", func(name string, def diskkit.DiskDef) (diskkit.Disk, error) {
		root := def.Config["root"]
		if root == "" {
			return nil, fmt.Errorf("local driver: %q requires a root directory", name)
		}
		return newNamed(name, root)
	})
}
