// Package source defines the catalog directory conventions of the
// assistants crib can serve, and a registry for them. A source maps the
// user's home directory and the project root to the two catalog layers;
// sources that support it also install the hook that pipes crib output
// into the assistant's context.
package source

import (
	"fmt"
	"sort"
	"sync"
)

// Source maps the two catalog layers for one assistant convention.
type Source interface {
	// Name returns the unique identifier for this source (e.g., "claude-code").
	Name() string

	// Description returns a short human-readable description.
	Description() string

	// Roots maps the user's home directory and the project root to this
	// source's catalog roots. References live under <root>/references.
	Roots(home, project string) (userRoot, projectRoot string)
}

// InstallOpts controls how an Installer wires crib into an assistant.
type InstallOpts struct {
	// SettingsPath overrides the default settings file location.
	SettingsPath string
	// Event selects the hook event: "session" (the default) fires once
	// per session, "prompt" fires on every prompt and carries its text.
	Event string
}

// Installer is an optional interface for sources that can set up the
// assistant-side hook (used by crib init --hooks).
type Installer interface {
	// Install merges the crib hook into the assistant's settings.
	Install(opts InstallOpts) error

	// IsInstalled reports whether a crib hook is already configured.
	IsInstalled(opts InstallOpts) (bool, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Source)
)

// Register adds a source to the registry. It panics if a source with the
// same name is already registered.
func Register(s Source) {
	mu.Lock()
	defer mu.Unlock()
	name := s.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("source: duplicate registration for %q", name))
	}
	registry[name] = s
}

// Get returns the source with the given name, or nil if not found.
func Get(name string) Source {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names returns the sorted names of all registered sources.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
