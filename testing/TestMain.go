// Package testing is blank-imported by test files so the runtime test switch
// flips before any package init runs. The switch itself lives in
// internal/testing/guard.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/mercato-app/mercato/internal/testing/guard"
)

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
