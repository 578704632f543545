// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"fmt"
	"slices"
	"sync"
)

type (
	// Member is one attribute of a Class.
	Member struct {
		Name     string
		QualName string
		Module   string
		Value    any
	}

	// Class is a class object assembled from member definitions that may be
	// contributed by several modules.
	Class struct {
		mu      sync.RWMutex
		name    string
		module  string
		members map[string]*Member
		order   []string
	}

	// ClassPackage is a Package facade for a subpackage that defines a single
	// class named like the subpackage's last segment. The class is completed
	// with the members of its member modules on first access.
	ClassPackage struct {
		*Package
		className     string
		memberModules []string

		resolveMu  sync.Mutex
		assembling *Class
		resolved   *Class
	}
)

// NewClass returns an empty class.
func NewClass(name string) *Class {
	return &Class{name: name, members: make(map[string]*Member)}
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Module returns the name of the module the class belongs to.
func (c *Class) Module() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.module
}

// SetModule sets the name of the module the class belongs to.
func (c *Class) SetModule(module string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.module = module
}

// QualName returns the qualified name of the class.
func (c *Class) QualName() string { return c.name }

// AddMember adds or replaces a member.
func (c *Class) AddMember(name string, value any) *Class {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.members[name]; !exists {
		c.order = append(c.order, name)
	}
	c.members[name] = &Member{
		Name:     name,
		QualName: c.name + "." + name,
		Module:   c.module,
		Value:    value,
	}
	return c
}

// Member returns a member.
func (c *Class) Member(name string) (*Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.members[name]
	return m, ok
}

// Members returns the member names in the order they were added.
func (c *Class) Members() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// NewClassPackage wraps the loaded subpackage pkgname. Its only API member is
// the class named after the last segment of pkgname. On first read of that
// name, every member module "<pkgname>.<member>" is imported and its
// attribute <member> is added to the class.
func NewClassPackage(r *Registry, pkgname string, memberModules ...string) (*ClassPackage, error) {
	_, className := parentName(pkgname)
	p, err := newPackage(r, "classpackage", pkgname, []string{className}, newFacadeOptions(nil))
	if err != nil {
		return nil, err
	}
	c := &ClassPackage{
		Package:       p,
		className:     className,
		memberModules: slices.Clone(memberModules),
	}
	if err := p.install(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClassName returns the name of the wrapped class.
func (c *ClassPackage) ClassName() string { return c.className }

// Resolve implements Namespace. Reading the class name assembles the class
// once; everything else resolves as on Package. While the member modules are
// imported, reads of the class name, including those made by the member
// modules themselves, return the class being assembled.
func (c *ClassPackage) Resolve(name string) (any, error) {
	if name != c.className {
		return c.Package.Resolve(name)
	}
	if cls := c.current(); cls != nil {
		return cls, nil
	}

	v, err := c.Package.Resolve(name)
	if err != nil {
		return nil, err
	}
	cls, ok := v.(*Class)
	if !ok {
		return nil, &ImportError{Name: c.name, Cause: fmt.Errorf("%s is %T, not a class", name, v)}
	}

	c.resolveMu.Lock()
	if other := c.resolved; other != nil {
		c.resolveMu.Unlock()
		return other, nil
	}
	if other := c.assembling; other != nil {
		c.resolveMu.Unlock()
		return other, nil
	}
	c.assembling = cls
	c.resolveMu.Unlock()

	err = c.assemble(cls)

	c.resolveMu.Lock()
	c.assembling = nil
	if err == nil {
		c.resolved = cls
	}
	c.resolveMu.Unlock()
	if err != nil {
		return nil, err
	}
	c.set(c.className, cls)
	return cls, nil
}

// current returns the assembled class, or the one being assembled.
func (c *ClassPackage) current() *Class {
	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()
	if c.resolved != nil {
		return c.resolved
	}
	return c.assembling
}

// assemble imports every member module and adds its member to cls. The
// lock is not held here since member modules may read the class back.
func (c *ClassPackage) assemble(cls *Class) error {
	parent, _ := parentName(c.name)
	cls.SetModule(parent)
	for _, member := range c.memberModules {
		modName := c.name + "." + member
		mod, err := c.registry.Import(modName)
		if err != nil {
			return &ImportError{Name: modName, Cause: err}
		}
		value, err := mod.Resolve(member)
		if err != nil {
			return &ImportError{Name: modName, Cause: err}
		}
		cls.AddMember(member, value)
	}
	return nil
}

// Get is Resolve for callers that think in attribute access.
func (c *ClassPackage) Get(name string) (any, error) { return c.Resolve(name) }
