package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
)

// TestGraftDependencies checks that every node uses the dependencies it
// declares and declares the ones it uses.
func TestGraftDependencies(t *testing.T) {
	// AssertDepsValid derives the dependency ID from the package of the type
	// passed to Dep[T]. Several nodes provide types from the shared ports
	// package, so every one of them would be expected under the ID "ports".
	t.Skip("graft's static check cannot tell nodes providing ports types apart")
	graft.AssertDepsValid(t, "../../internal")
}
