package runtime

import (
	"runtime/debug"
	"sync"
)

const productName = "react-runtime"

var (
	versionOnce  sync.Once
	versionValue string
)

// Version returns the product version label, computed once per process
// from build metadata.
func Version() string {
	versionOnce.Do(func() {
		versionValue = productName + " (devel)"
		if bi, ok := debug.ReadBuildInfo(); ok {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				versionValue = productName + " " + v
			}
		}
	})
	return versionValue
}
