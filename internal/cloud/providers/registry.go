package providers

import (
	"fmt"
	"sort"
	"sync"

	"nathanbeddoewebdev/dropproxy/internal/cloud/domain"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	"nathanbeddoewebdev/dropproxy/internal/util"
)

// Factory builds a cloud Provider from loaded credentials.
type Factory func(creds credentials.Credentials) (domain.Provider, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a provider factory to the cloud registry.
// It panics on empty name, nil factory, or duplicate registration
// (programmer errors detected at startup).
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("cloud/providers: empty provider name")
	}
	if factory == nil {
		panic("cloud/providers: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("cloud/providers: provider %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Get constructs the Provider registered under name.
func Get(name string, creds credentials.Credentials) (domain.Provider, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cloud/providers: unknown provider %q", name)
	}

	return factory(creds)
}

// List returns the sorted names of all registered cloud providers.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}

// RegisterAll registers every built-in cloud provider.
func RegisterAll() {
	RegisterDigitalOcean()
	RegisterHetzner()
}
