// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zetup/zetup/pkg/requires"
)

type (
	// Metadata is the project information a top-level package is annotated with.
	Metadata struct {
		Version      string
		Description  string
		Requires     *requires.Requirements
		Extras       *requires.Extras
		Packages     []string
		PackageRoot  string
		Distribution *requires.Distribution
	}

	// MetadataFinder locates the project metadata of a top-level package.
	MetadataFinder interface {
		FindMetadata(pkgname string) (*Metadata, error)
	}

	// Toplevel is a Package facade for a project's top-level package. It is
	// annotated with the project metadata on construction.
	Toplevel struct {
		*Package
		meta *Metadata
	}

	// ExtraToplevel is a Package facade for the subpackage implementing an
	// extra feature of a top-level package.
	ExtraToplevel struct {
		*Package
		extra    string
		requires *requires.Requirements
	}
)

// WithCheckRequirements toggles the strict requirement check on construction.
// It is on by default.
func WithCheckRequirements(check bool) Option {
	return func(o *facadeOptions) { o.checkRequires = check }
}

// WithCheckPackages toggles the check that every declared package exists.
// It is on by default.
func WithCheckPackages(check bool) Option {
	return func(o *facadeOptions) { o.checkPackages = check }
}

// WithEnvironment sets the environment requirements are checked against.
// Without it, modules are imported through the facade's registry.
func WithEnvironment(env requires.Environment) Option {
	return func(o *facadeOptions) { o.env = &env }
}

// WithMetadataFinder sets where the project metadata comes from.
func WithMetadataFinder(f MetadataFinder) Option {
	return func(o *facadeOptions) { o.finder = f }
}

// NewToplevel wraps the top-level package name like NewPackage and then
// annotates it. Construction fails with the error of the strict requirement
// check when the project's requirements are not met.
func NewToplevel(r *Registry, name string, api []string, opts ...Option) (*Toplevel, error) {
	o := newFacadeOptions(opts)
	p, err := newPackage(r, "toplevel", name, api, o)
	if err != nil {
		return nil, err
	}
	t := &Toplevel{Package: p}
	if err := p.install(t); err != nil {
		return nil, err
	}

	meta, err := annotate(r, name, o)
	if err != nil {
		return nil, err
	}
	t.meta = meta
	return t, nil
}

// Metadata returns the metadata the package was annotated with.
func (t *Toplevel) Metadata() *Metadata { return t.meta }

// Requires returns the project's requirements.
func (t *Toplevel) Requires() *requires.Requirements { return t.meta.Requires }

// Extras returns the project's extra requirements, or nil.
func (t *Toplevel) Extras() *requires.Extras { return t.meta.Extras }

// Annotate looks up the metadata of the loaded package pkgname and sets
// __version__, __requires__, __extras__, __distribution__, __description__
// and __packages__ on it. Requirements and packages are checked unless
// disabled with WithCheckRequirements or WithCheckPackages.
func Annotate(r *Registry, pkgname string, opts ...Option) (*Metadata, error) {
	return annotate(r, pkgname, newFacadeOptions(opts))
}

func annotate(r *Registry, pkgname string, o facadeOptions) (*Metadata, error) {
	ns, ok := r.Lookup(pkgname)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotLoaded, pkgname)
	}
	if o.finder == nil {
		return nil, fmt.Errorf("annotate %s: no metadata finder", pkgname)
	}
	meta, err := o.finder.FindMetadata(pkgname)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", pkgname, err)
	}

	setAttr(ns, AttrVersion, meta.Version)
	setAttr(ns, AttrRequires, meta.Requires)
	if o.checkRequires && meta.Requires != nil {
		if _, err := meta.Requires.Check(o.environment(r), true); err != nil {
			return nil, err
		}
	}
	if meta.Extras != nil && meta.Extras.Len() > 0 {
		setAttr(ns, AttrExtras, meta.Extras)
	}
	setAttr(ns, AttrDistribution, meta.Distribution)
	setAttr(ns, AttrDescription, meta.Description)
	setAttr(ns, AttrPackages, meta.Packages)
	if o.checkPackages {
		if err := CheckPackages(meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// NewExtraToplevel wraps the subpackage name, "<toplevel>.<extra>", of the
// loaded top-level package. Its version is the top-level version and its
// requirements are the top-level's extra of the same name, checked strictly
// unless disabled with WithCheckRequirements.
func NewExtraToplevel(r *Registry, name string, api []string, opts ...Option) (*ExtraToplevel, error) {
	mainName, extra := parentName(name)
	if mainName == "" {
		return nil, fmt.Errorf("%w: %s is not a subpackage", ErrModuleNotLoaded, name)
	}
	main, ok := r.Lookup(mainName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotLoaded, mainName)
	}

	o := newFacadeOptions(opts)
	p, err := newPackage(r, "extra_toplevel", name, api, o)
	if err != nil {
		return nil, err
	}
	e := &ExtraToplevel{Package: p, extra: extra}
	if err := p.install(e); err != nil {
		return nil, err
	}

	version, _ := main.Version()
	setAttr(e, AttrVersion, version)

	v, err := main.Resolve(AttrExtras)
	if err != nil {
		return nil, fmt.Errorf("%s has no extras: %w", mainName, err)
	}
	extras, ok := v.(*requires.Extras)
	if !ok {
		return nil, fmt.Errorf("%s.%s is %T, not extras", mainName, AttrExtras, v)
	}
	reqs, err := extras.Get(extra)
	if err != nil {
		return nil, err
	}
	e.requires = reqs
	setAttr(e, AttrRequires, reqs)

	if o.checkRequires {
		if _, err := reqs.Check(o.environment(r), true); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extra returns the name of the extra feature.
func (e *ExtraToplevel) Extra() string { return e.extra }

// Requires returns the extra's requirements.
func (e *ExtraToplevel) Requires() *requires.Requirements { return e.requires }

func (o facadeOptions) environment(r *Registry) requires.Environment {
	if o.env != nil {
		return *o.env
	}
	return requires.Environment{Importer: r.Importer()}
}

// setAttr annotates a namespace. On facades the value is stored on both the
// facade and the wrapped module.
func setAttr(ns Namespace, name string, value any) {
	if f, ok := ns.(facade); ok {
		p := f.facadePackage()
		p.set(name, value)
		p.module.Assign(name, value)
		return
	}
	ns.Assign(name, value)
}

// CheckPackages verifies that every declared package is a directory with an
// __init__.py below the package root.
func CheckPackages(meta *Metadata) error {
	if meta.PackageRoot == "" {
		return nil
	}
	var errs []error
	for _, pkg := range meta.Packages {
		dir := filepath.Join(meta.PackageRoot, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
		if _, err := os.Stat(filepath.Join(dir, "__init__.py")); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s (%s)", ErrPackageMissing, pkg, dir))
		}
	}
	return errors.Join(errs...)
}
