// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Names of module machinery attributes.
const (
	AttrName         = "__name__"
	AttrDoc          = "__doc__"
	AttrFile         = "__file__"
	AttrPath         = "__path__"
	AttrModule       = "__module__"
	AttrAll          = "__all__"
	AttrVersion      = "__version__"
	AttrRequires     = "__requires__"
	AttrExtras       = "__extras__"
	AttrDistribution = "__distribution__"
	AttrDescription  = "__description__"
	AttrPackages     = "__packages__"
)

type (
	// Namespace is anything the registry can hold under a qualified name.
	Namespace interface {
		// Name returns the fully qualified dotted name.
		Name() string
		// Resolve reads an attribute.
		Resolve(name string) (any, error)
		// Accepts reports whether Assign would store value under name.
		Accepts(name string, value any) bool
		// Assign writes an attribute and reports whether it was stored.
		Assign(name string, value any) bool
		// Names lists the introspectable attribute names.
		Names() []string
		// Version returns the __version__ attribute. The second result is
		// false when it is absent or nil.
		Version() (string, bool)
	}

	// Object is a plain module: a named, ordered attribute table.
	Object struct {
		mu    sync.RWMutex
		name  string
		attrs map[string]any
		order []string
	}
)

// NewObject returns an empty module named name.
func NewObject(name string) *Object {
	o := &Object{name: name, attrs: make(map[string]any)}
	o.attrs[AttrName] = name
	o.order = append(o.order, AttrName)
	return o
}

// Name returns the qualified module name.
func (o *Object) Name() string { return o.name }

// Set stores an attribute, keeping first-assignment order.
func (o *Object) Set(name string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.attrs[name]; !exists {
		o.order = append(o.order, name)
	}
	o.attrs[name] = value
}

// Get returns an attribute.
func (o *Object) Get(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.attrs[name]
	return v, ok
}

// Delete removes an attribute.
func (o *Object) Delete(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.attrs[name]; !exists {
		return
	}
	delete(o.attrs, name)
	o.order = slices.DeleteFunc(o.order, func(n string) bool { return n == name })
}

// SetDoc sets __doc__.
func (o *Object) SetDoc(doc string) { o.Set(AttrDoc, doc) }

// SetFile sets __file__.
func (o *Object) SetFile(file string) { o.Set(AttrFile, file) }

// SetPath sets __path__, which marks the module as a package.
func (o *Object) SetPath(path ...string) { o.Set(AttrPath, path) }

// SetAll sets __all__.
func (o *Object) SetAll(names ...string) { o.Set(AttrAll, names) }

// Doc returns __doc__.
func (o *Object) Doc() string { return o.stringAttr(AttrDoc) }

// File returns __file__.
func (o *Object) File() string { return o.stringAttr(AttrFile) }

// All returns __all__, or nil when it is not defined.
func (o *Object) All() []string {
	v, ok := o.Get(AttrAll)
	if !ok {
		return nil
	}
	names, _ := v.([]string)
	return slices.Clone(names)
}

// Resolve implements Namespace.
func (o *Object) Resolve(name string) (any, error) {
	if v, ok := o.Get(name); ok {
		return v, nil
	}
	return nil, &AttributeError{Module: o.name, Name: name}
}

// Accepts implements Namespace. Plain modules accept everything.
func (o *Object) Accepts(string, any) bool { return true }

// Assign implements Namespace.
func (o *Object) Assign(name string, value any) bool {
	o.Set(name, value)
	return true
}

// Names implements Namespace, in first-assignment order.
func (o *Object) Names() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.order)
}

// Version implements Namespace.
func (o *Object) Version() (string, bool) {
	v, ok := o.Get(AttrVersion)
	if !ok || v == nil {
		return "", false
	}
	return versionString(v)
}

// String returns a module-style representation.
func (o *Object) String() string {
	if file := o.File(); file != "" {
		return fmt.Sprintf("<module %q from %q>", o.name, file)
	}
	return fmt.Sprintf("<module %q>", o.name)
}

func (o *Object) stringAttr(name string) string {
	v, _ := o.Get(name)
	s, _ := v.(string)
	return s
}

// versionString accepts plain strings and Stringer values such as
// zetup.Version.
func versionString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, tv != ""
	case fmt.Stringer:
		s := tv.String()
		return s, s != ""
	default:
		return "", false
	}
}

// isDunder reports whether name is reserved for module machinery, like __file__.
func isDunder(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "__")
}

// parentName splits "a.b.c" into "a.b" and "c".
func parentName(name string) (parent, child string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
