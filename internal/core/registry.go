package core

import "sync"

// ScopeFor returns the patch scope for the given test, creating one if
// needed. Multiple calls with the same TestReporter return the same Scope,
// so helpers in one test share a single restore stack.
//
// If the TestReporter supports Cleanup (like *testing.T), the scope is
// restored and evicted automatically when the test completes; a restore
// failure at that point fails the test. Reporters without Cleanup must call
// Restore themselves.
func ScopeFor(t TestReporter) *Scope {
	registryMu.Lock()
	defer registryMu.Unlock()

	if scope, ok := registry[t]; ok {
		return scope
	}

	scope := NewScope()
	registry[t] = scope

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()

			if err := scope.Restore(); err != nil {
				t.Fatalf("%v", err)
			}
		})
	}

	return scope
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for per-test scopes
	registry = make(map[TestReporter]*Scope)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup
// functions. This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}
