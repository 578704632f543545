// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zetup/zetup/pkg/requires"
)

type (
	// facade is implemented by every namespace facade. Facades are exempt
	// from the submodule write filter and cannot be replaced again.
	facade interface {
		facadePackage() *Package
	}

	// Option configures a package facade.
	Option func(*facadeOptions)

	facadeOptions struct {
		aliases       [][2]string
		deprecated    [][2]string
		checkRequires bool
		checkPackages bool
		env           *requires.Environment
		finder        MetadataFinder
	}

	// Package is a facade over a loaded package module. Reads go through the
	// API alias table, the wrapped module, the facade's own state and finally
	// submodule import. Writes of the package's own plain submodules are
	// forwarded to the wrapped module and kept out of Names.
	Package struct {
		mu         sync.RWMutex
		registry   *Registry
		kind       string
		name       string
		module     Namespace
		state      map[string]any
		api        []string
		aliases    map[string]string
		deprecated map[string]bool
		captured   map[string]bool
	}
)

// WithAliases maps public names onto the real attribute names.
func WithAliases(aliases map[string]string) Option {
	return func(o *facadeOptions) {
		for _, k := range sortedKeys(aliases) {
			o.aliases = append(o.aliases, [2]string{k, aliases[k]})
		}
	}
}

// WithDeprecatedAliases is like WithAliases, but every read through one of
// these aliases emits a DeprecationWarning.
func WithDeprecatedAliases(aliases map[string]string) Option {
	return func(o *facadeOptions) {
		for _, k := range sortedKeys(aliases) {
			o.deprecated = append(o.deprecated, [2]string{k, aliases[k]})
		}
	}
}

func newFacadeOptions(opts []Option) facadeOptions {
	o := facadeOptions{checkRequires: true, checkPackages: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewPackage wraps the loaded module name with a facade whose public API is
// api, and swaps the facade into the registry.
func NewPackage(r *Registry, name string, api []string, opts ...Option) (*Package, error) {
	p, err := newPackage(r, "package", name, api, newFacadeOptions(opts))
	if err != nil {
		return nil, err
	}
	if err := p.install(p); err != nil {
		return nil, err
	}
	return p, nil
}

// newPackage builds the facade without registering it.
func newPackage(r *Registry, kind, name string, api []string, o facadeOptions) (*Package, error) {
	mod, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotLoaded, name)
	}
	if isFacade(mod) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	p := &Package{
		registry:   r,
		kind:       kind,
		name:       name,
		module:     mod,
		state:      make(map[string]any),
		aliases:    make(map[string]string),
		deprecated: make(map[string]bool),
		captured:   make(map[string]bool),
	}

	p.state[AttrName] = name
	p.state[AttrModule] = mod
	for _, attr := range []string{AttrDoc, AttrFile, AttrPath} {
		if v, err := mod.Resolve(attr); err == nil {
			p.state[attr] = v
		}
	}

	for _, n := range api {
		p.addAPI(n)
	}
	for _, kv := range o.aliases {
		p.addAPI(kv[0])
		p.aliases[kv[0]] = kv[1]
	}
	for _, kv := range o.deprecated {
		p.addAPI(kv[0])
		p.aliases[kv[0]] = kv[1]
		p.deprecated[kv[0]] = true
	}
	return p, nil
}

// install swaps ns, which embeds p, into the registry.
func (p *Package) install(ns Namespace) error {
	_, err := p.registry.Replace(p.name, ns)
	return err
}

func (p *Package) addAPI(name string) {
	if !slices.Contains(p.api, name) {
		p.api = append(p.api, name)
	}
}

func (p *Package) facadePackage() *Package { return p }

// Name implements Namespace.
func (p *Package) Name() string { return p.name }

// Module returns the wrapped module.
func (p *Package) Module() Namespace { return p.module }

// Resolve implements Namespace.
func (p *Package) Resolve(name string) (any, error) {
	if isDunder(name) {
		if name == AttrAll {
			return p.All(), nil
		}
		if v, ok := p.own(name); ok {
			return v, nil
		}
		return nil, &AttributeError{Module: p.name, Name: name}
	}

	if real, ok := p.aliases[name]; ok {
		if p.deprecated[name] {
			p.registry.warnDeprecated(DeprecationWarning{Module: p.name, Name: name, Replacement: real})
		}
		name = real
	}

	if v, err := p.module.Resolve(name); err == nil {
		return v, nil
	}
	if v, ok := p.own(name); ok {
		return v, nil
	}

	sub, err := p.registry.Import(p.name + "." + name)
	if err == nil {
		return sub, nil
	}
	return nil, &AttributeError{Module: p.name, Name: name, Listed: p.listed(name), Cause: err}
}

// Get is Resolve for callers that think in attribute access.
func (p *Package) Get(name string) (any, error) { return p.Resolve(name) }

// Accepts implements Namespace. It rejects plain submodules of this package
// assigned under their own name.
func (p *Package) Accepts(name string, value any) bool {
	ns, ok := value.(Namespace)
	if !ok || isFacade(ns) {
		return true
	}
	return ns.Name() != p.name+"."+name
}

// Assign implements Namespace. Rejected submodules are handed to the wrapped
// module instead, so they stay reachable.
func (p *Package) Assign(name string, value any) bool {
	if !p.Accepts(name, value) {
		p.module.Assign(name, value)
		p.mu.Lock()
		p.captured[name] = true
		p.mu.Unlock()
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[name] = value
	return true
}

// Names implements Namespace: the facade's own attributes without captured
// submodules, plus the public API.
func (p *Package) Names() []string {
	p.mu.RLock()
	names := make([]string, 0, len(p.state)+len(p.api))
	for name, v := range p.state {
		if p.captured[name] {
			continue
		}
		if ns, ok := v.(Namespace); ok && !isDunder(name) && !isFacade(ns) {
			continue
		}
		names = append(names, name)
	}
	p.mu.RUnlock()

	names = append(names, AttrAll)
	names = append(names, p.All()...)
	slices.Sort(names)
	return slices.Compact(names)
}

// All returns the public API: the wrapped module's __all__ followed by the
// declared API names. Deprecated aliases are not part of it.
func (p *Package) All() []string {
	var all []string
	if v, err := p.module.Resolve(AttrAll); err == nil {
		if names, ok := v.([]string); ok {
			all = append(all, names...)
		}
	}
	for _, name := range p.api {
		if !p.deprecated[name] && !slices.Contains(all, name) {
			all = append(all, name)
		}
	}
	return all
}

// Version implements Namespace.
func (p *Package) Version() (string, bool) {
	if v, ok := p.own(AttrVersion); ok && v != nil {
		return versionString(v)
	}
	return p.module.Version()
}

// String returns a module-style representation.
func (p *Package) String() string {
	if file, ok := p.own(AttrFile); ok {
		return fmt.Sprintf("<%s %q from %q>", p.kind, p.name, fmt.Sprint(file))
	}
	return fmt.Sprintf("<%s %q>", p.kind, p.name)
}

// set stores own state, bypassing the write filter.
func (p *Package) set(name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[name] = value
}

func (p *Package) own(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.state[name]
	return v, ok
}

// listed reports whether name is declared by the wrapped module's __all__
// or the facade's API.
func (p *Package) listed(name string) bool {
	return slices.Contains(p.All(), name)
}

func isFacade(ns Namespace) bool {
	_, ok := ns.(facade)
	return ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
