package exec

import (
	"fmt"
	"sort"
	"sync"

	"github.com/notargets/cgbench/cgerr"
)

// Config holds the settings shared by the registered spaces. Zero values
// select each backend's defaults.
type Config struct {
	// Workers bounds the goroutines a host space fans out to.
	Workers int
	// Device is the OCCA device property string, e.g. {"mode": "Serial"}.
	Device string
	// BuildProps is the OCCA kernel build property string.
	BuildProps string
}

// Factory opens a Space.
type Factory func(cfg Config) (Space, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a space available by name. It panics if called twice with
// the same name or with a nil factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("exec: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("exec: Register called twice for space %q", name))
	}
	factories[name] = f
}

// Open creates the named space.
func Open(name string, cfg Config) (Space, error) {
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, cgerr.NewInvalidArgError("exec.Open", "unknown space %q (registered: %v)", name, Spaces())
	}
	s, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("open space %s: %w", name, err)
	}
	return s, nil
}

// Spaces returns the sorted names of the registered spaces.
func Spaces() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
