// SPDX-License-Identifier: MPL-2.0

package sitepkgs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zetup/zetup/pkg/requires"
)

// ErrModuleNotFound is returned by Import when no search path provides the module.
var ErrModuleNotFound = errors.New("module not found")

// versionRegex matches a top-level literal __version__ assignment. The second
// group is set for an explicit None.
var versionRegex = regexp.MustCompile(`(?m)^__version__\s*(?::\s*[\w.]+\s*)?=\s*(?:[rbu]?['"]([^'"\n]*)['"]|(None)\b)`)

// ModuleKind tells how a module is stored.
type ModuleKind int

const (
	// KindPackage is a directory with an __init__.py.
	KindPackage ModuleKind = iota
	// KindSource is a single .py file.
	KindSource
	// KindExtension is a compiled .so or .pyd file.
	KindExtension
)

// Module is a module located on disk.
type Module struct {
	Name string
	File string
	Kind ModuleKind

	version    string
	hasVersion bool
}

// String returns the kind name.
func (k ModuleKind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindSource:
		return "source"
	case KindExtension:
		return "extension"
	default:
		return fmt.Sprintf("ModuleKind(%d)", int(k))
	}
}

// Version returns the literal __version__ of the module source. Extension
// modules, sources without the assignment and "__version__ = None" report false.
func (m *Module) Version() (string, bool) {
	return m.version, m.hasVersion
}

// Import locates the module by its dotted name on the search paths, in order.
func (e *Environment) Import(name string) (requires.Module, error) {
	mod, err := e.FindModule(name)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// FindModule is Import with the concrete result type.
func (e *Environment) FindModule(name string) (*Module, error) {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: invalid module name %q", ErrModuleNotFound, name)
		}
	}

	for _, root := range e.paths {
		mod, err := locate(root, parts)
		if err != nil {
			return nil, err
		}
		if mod != nil {
			mod.Name = name
			return mod, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
}

// locate returns nil without error when root does not hold the module.
func locate(root string, parts []string) (*Module, error) {
	base := filepath.Join(append([]string{root}, parts...)...)

	if init := filepath.Join(base, "__init__.py"); isFile(init) {
		return readSource(init, KindPackage)
	}
	if src := base + ".py"; isFile(src) {
		return readSource(src, KindSource)
	}

	dir, last := filepath.Split(base)
	matches, err := doublestar.Glob(os.DirFS(dir), last+"*.{so,pyd}")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		// "foo.so" or "foo.cpython-312-x86_64-linux-gnu.so", never "foobar.so".
		rest := strings.TrimPrefix(m, last)
		if strings.HasPrefix(rest, ".") {
			return &Module{File: filepath.Join(dir, m), Kind: KindExtension}, nil
		}
	}
	return nil, nil
}

func readSource(path string, kind ModuleKind) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod := &Module{File: path, Kind: kind}
	if m := versionRegex.FindSubmatch(data); m != nil && m[2] == nil {
		mod.version, mod.hasVersion = string(m[1]), true
	}
	return mod, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
