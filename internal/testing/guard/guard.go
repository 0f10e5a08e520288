// Package guard flips the runtime test switch before any package init runs.
// Test files blank-import it so binaries under test skip runtime startup.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MERCATO_TEST_MODE") == "" {
			_ = os.Setenv("MERCATO_TEST_MODE", "1")
		}
	})
}
