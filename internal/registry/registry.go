// Package registry tracks the live set of tool configurations and answers
// match queries against a service environment.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/manifest"
)

// ErrDuplicateTool reports a registration under an already-taken name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Registry holds tool configurations keyed by name.
//
// Thread-safety model:
//   - Register/Replace/LoadDir: safe from any goroutine
//   - Get/All/Names/Count/Match: safe from any goroutine
//
// Replace swaps the whole set atomically; readers never observe a
// half-loaded registry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]capability.ToolConfig
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]capability.ToolConfig),
	}
}

// Register adds one tool configuration.
// Returns ErrDuplicateTool if the name is already taken.
func (r *Registry) Register(cfg capability.ToolConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[cfg.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, cfg.Name)
	}
	r.tools[cfg.Name] = cfg
	return nil
}

// Get returns the configuration registered under name.
func (r *Registry) Get(name string) (capability.ToolConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.tools[name]
	return cfg, ok
}

// All returns every registered configuration, sorted by name.
func (r *Registry) All() []capability.ToolConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfgs := make([]capability.ToolConfig, 0, len(r.tools))
	for _, cfg := range r.tools {
		cfgs = append(cfgs, cfg)
	}
	sort.Slice(cfgs, func(i, j int) bool { return cfgs[i].Name < cfgs[j].Name })
	return cfgs
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Replace swaps the registered set for cfgs in one step.
// Duplicate names in cfgs fail the whole replacement; the previous set
// stays in place.
func (r *Registry) Replace(cfgs []capability.ToolConfig) error {
	next := make(map[string]capability.ToolConfig, len(cfgs))
	for _, cfg := range cfgs {
		if _, exists := next[cfg.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateTool, cfg.Name)
		}
		next[cfg.Name] = cfg
	}

	r.mu.Lock()
	r.tools = next
	r.mu.Unlock()
	return nil
}

// LoadDir compiles and validates every manifest under dir, then replaces
// the registered set. Any load or validation error leaves the previous
// set untouched.
func (r *Registry) LoadDir(dir string) error {
	cfgs, errs := manifest.LoadDir(dir)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if verrs := manifest.Validate(cfgs); len(verrs) > 0 {
		joined := make([]error, len(verrs))
		for i, ve := range verrs {
			joined[i] = ve
		}
		return errors.Join(joined...)
	}

	return r.Replace(cfgs)
}
