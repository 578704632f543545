// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/zetup/zetup/pkg/requires"
)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

type (
	// Loader runs the code of a module against its fresh module object.
	// It may import other modules and may replace its own registry entry
	// with a facade.
	Loader func(r *Registry, m *Object) error

	// DeprecationWarning reports a read through a deprecated API alias.
	DeprecationWarning struct {
		Module      string
		Name        string
		Replacement string
	}

	// WarningHandler receives deprecation warnings.
	WarningHandler func(DeprecationWarning)

	// Registry maps qualified module names to namespaces.
	Registry struct {
		mu      sync.Mutex
		modules map[string]Namespace
		loaders map[string]Loader
		warn    WarningHandler
	}

	registryImporter struct {
		r *Registry
	}
)

// String renders the warning as "pkg.old is deprecated in favor of pkg.new".
func (w DeprecationWarning) String() string {
	return fmt.Sprintf("%s.%s is deprecated in favor of %s.%s", w.Module, w.Name, w.Module, w.Replacement)
}

// NewRegistry returns an empty registry that logs deprecation warnings to stderr.
func NewRegistry() *Registry {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "zetup",
	})
	return &Registry{
		modules: make(map[string]Namespace),
		loaders: make(map[string]Loader),
		warn: func(w DeprecationWarning) {
			logger.Warn("DeprecationWarning", "message", w.String())
		},
	}
}

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// SetWarningHandler replaces the deprecation warning handler. A nil handler
// discards warnings.
func (r *Registry) SetWarningHandler(h WarningHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warn = h
}

// Define registers module code under a qualified name. A nil loader defines
// an empty module. Defining an already imported module has no effect on it.
func (r *Registry) Define(name string, load Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if load == nil {
		load = func(*Registry, *Object) error { return nil }
	}
	r.loaders[name] = load
}

// Lookup returns the namespace currently registered under name.
func (r *Registry) Lookup(name string) (Namespace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.modules[name]
	return ns, ok
}

// Modules returns the names of all imported modules.
func (r *Registry) Modules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	return names
}

// Replace swaps the registry entry for name with a facade. A plain module can
// be replaced once; replacing a facade fails with ErrAlreadyRegistered.
// The replaced namespace is returned.
func (r *Registry) Replace(name string, ns Namespace) (Namespace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotLoaded, name)
	}
	if isFacade(old) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.modules[name] = ns
	return old, nil
}

// Import returns the namespace registered under name, running its module
// code first if needed. Parent packages are imported before their children
// and every child is assigned onto its parent once loaded. A module whose
// code fails is removed again and the failure is returned as an ImportError.
func (r *Registry) Import(name string) (Namespace, error) {
	if ns, ok := r.Lookup(name); ok {
		return ns, nil
	}

	parent, child := parentName(name)
	if parent != "" {
		if _, err := r.Import(parent); err != nil {
			return nil, err
		}
		// The parent's code may have imported this module already.
		if ns, ok := r.Lookup(name); ok {
			return ns, nil
		}
	}

	r.mu.Lock()
	load, ok := r.loaders[name]
	if !ok {
		r.mu.Unlock()
		return nil, &ImportError{Name: name, Cause: ErrModuleNotFound}
	}
	obj := NewObject(name)
	r.modules[name] = obj
	r.mu.Unlock()

	if err := load(r, obj); err != nil {
		r.mu.Lock()
		delete(r.modules, name)
		r.mu.Unlock()
		return nil, &ImportError{Name: name, Cause: err}
	}

	ns, _ := r.Lookup(name)
	if parent != "" {
		if parentNS, ok := r.Lookup(parent); ok {
			parentNS.Assign(child, ns)
		}
	}
	return ns, nil
}

// Importer adapts the registry to the requirement checker.
func (r *Registry) Importer() requires.Importer {
	return registryImporter{r: r}
}

func (i registryImporter) Import(name string) (requires.Module, error) {
	return i.r.Import(name)
}

func (r *Registry) warnDeprecated(w DeprecationWarning) {
	r.mu.Lock()
	h := r.warn
	r.mu.Unlock()
	if h != nil {
		h(w)
	}
}
