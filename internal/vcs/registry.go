package vcs

import (
	"fmt"
	"sync"

	"github.com/steveyegge/vcspull/internal/manifest"
)

// Constructor builds a Driver. Implementations register one with the
// registry from an init() function.
type Constructor func() Driver

var (
	registry      = make(map[manifest.VCSKind]Constructor)
	registryMutex sync.RWMutex
)

// Register attaches a constructor for the given VCS kind. Called from
// init() in each driver package.
//
// Example:
//
//	func init() {
//	    vcs.Register(manifest.Git, func() vcs.Driver { return New() })
//	}
func Register(kind manifest.VCSKind, ctor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if ctor == nil {
		panic(fmt.Sprintf("vcs: Register constructor is nil for kind %s", kind))
	}
	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("vcs: Register called twice for kind %s", kind))
	}
	registry[kind] = ctor
}

// Get returns the Driver registered for kind, or an error if no
// driver package for that kind has been imported.
func Get(kind manifest.VCSKind) (Driver, error) {
	registryMutex.RLock()
	ctor, ok := registry[kind]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("vcs: no driver registered for kind %q (registered: %v)", kind, RegisteredKinds())
	}
	return ctor(), nil
}

// RegisteredKinds returns every VCS kind with a registered driver.
func RegisteredKinds() []manifest.VCSKind {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	kinds := make([]manifest.VCSKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}
