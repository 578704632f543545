// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/zetup/zetup/pkg/requires"
)

// Config file names, in lookup order.
const (
	CUEFile = "zetup.cue"

	VersionFile      = "VERSION"
	RequirementsFile = "requirements.txt"
)

// LegacyFiles are the INI config names, in lookup order.
var LegacyFiles = []string{"zetup.ini", "zetup.cfg", "zetuprc"}

var (
	// ErrConfigNotFound is returned when a directory holds no zetup config.
	ErrConfigNotFound = errors.New("no zetup config found")
	// ErrInvalidConfig is returned for configs with missing or malformed keys.
	ErrInvalidConfig = errors.New("invalid zetup config")

	//go:embed zetup_schema.cue
	schemaBytes []byte

	authorRegex = regexp.MustCompile(`^([^<]+)<([^>]+)>$`)
	extraRegex  = regexp.MustCompile(`^requirements\.([^.]+)\.txt$`)
)

type (
	// Notebook is an IPython notebook shipped in the project directory.
	Notebook struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}

	// Config is a loaded project configuration with everything derived from
	// the files around it.
	Config struct {
		Name        string   `json:"name"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Author      string   `json:"author"`
		Email       string   `json:"email"`
		URL         string   `json:"url"`
		License     string   `json:"license"`
		Python      []string `json:"python"`
		// Packages starts with the root package, followed by every
		// sub-package and the config package, if any.
		Packages []string `json:"packages"`
		// ConfigPackage is the package the config data is installed into.
		ConfigPackage string `json:"config_package,omitempty"`
		// SetupPackage is the "<root>.zetup" package holding Data on install.
		SetupPackage string   `json:"setup_package,omitempty"`
		Classifiers  []string `json:"classifiers"`
		Keywords     []string `json:"keywords"`
		Version      Version  `json:"version"`
		// VersionFile is empty when the project has no VERSION file.
		VersionFile  string                 `json:"version_file,omitempty"`
		Requires     *requires.Requirements `json:"-"`
		Extras       *requires.Extras       `json:"-"`
		Notebooks    []Notebook             `json:"notebooks,omitempty"`
		Dir          string                 `json:"dir"`
		File         string                 `json:"file"`
		Data         []string               `json:"data"`
		Distribution Distribution           `json:"distribution"`
	}

	// LoadOption configures Load.
	LoadOption func(*loadOptions)

	loadOptions struct {
		reqOpts []requires.Option
		logger  *log.Logger
	}

	// project is the raw content of a config file, before derivation.
	project struct {
		Name          string              `json:"name"`
		Title         string              `json:"title"`
		Description   string              `json:"description"`
		Author        string              `json:"author"`
		URL           string              `json:"url"`
		License       string              `json:"license"`
		Python        []string            `json:"python"`
		Packages      []string            `json:"packages"`
		Classifiers   []string            `json:"classifiers"`
		Keywords      []string            `json:"keywords"`
		ConfigPackage *string             `json:"config_package"`
		Requires      []string            `json:"requires"`
		Extras        map[string][]string `json:"extras"`
	}
)

// WithRuntime sets the interpreter version requirement gates are evaluated for.
func WithRuntime(rt requires.Runtime) LoadOption {
	return func(o *loadOptions) {
		o.reqOpts = append(o.reqOpts, requires.WithRuntime(rt))
	}
}

// WithLogger sets the logger that reports skipped config entries.
func WithLogger(logger *log.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// Load reads the zetup config in dir. zetup.cue is preferred over the legacy
// INI files. A directory without any config yields ErrConfigNotFound.
func Load(dir string, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	file, raw, err := readProject(abs)
	if err != nil {
		return nil, err
	}
	return derive(abs, file, raw, o)
}

// ConfigFile returns the path of the config file in dir.
func ConfigFile(dir string) (string, error) {
	for _, name := range append([]string{CUEFile}, LegacyFiles...) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrConfigNotFound, dir)
}

func readProject(dir string) (string, *project, error) {
	file, err := ConfigFile(dir)
	if err != nil {
		return "", nil, err
	}
	var raw *project
	if filepath.Base(file) == CUEFile {
		raw, err = readCUEProject(file)
	} else {
		raw, err = readINIProject(file)
	}
	if err != nil {
		return "", nil, err
	}
	return file, raw, nil
}

// derive fills a Config from the raw project and the files next to it.
func derive(dir, file string, raw *project, o loadOptions) (*Config, error) {
	m := authorRegex.FindStringSubmatch(raw.Author)
	if m == nil {
		return nil, fmt.Errorf("%w: %s: author %q is not of the form 'Name <email>'", ErrInvalidConfig, file, raw.Author)
	}

	cfg := &Config{
		Name:        raw.Name,
		Title:       raw.Title,
		Description: strings.ReplaceAll(strings.TrimSpace(raw.Description), "\n", " "),
		Author:      strings.TrimSpace(m[1]),
		Email:       strings.TrimSpace(m[2]),
		URL:         raw.URL,
		License:     raw.License,
		Python:      raw.Python,
		Dir:         dir,
		File:        file,
		Data:        []string{filepath.Base(file)},
	}
	if cfg.Title == "" {
		cfg.Title = cfg.Name
	}

	cfg.Classifiers = append(slices.Clone(raw.Classifiers), "Programming Language :: Python")
	for _, py := range cfg.Python {
		cfg.Classifiers = append(cfg.Classifiers, "Programming Language :: Python :: "+py)
	}
	cfg.Keywords = slices.Clone(raw.Keywords)
	if slices.ContainsFunc(cfg.Python, func(py string) bool { return strings.HasPrefix(py, "3") }) {
		cfg.Keywords = append(cfg.Keywords, "python3")
	}

	if err := cfg.derivePackages(raw); err != nil {
		return nil, err
	}

	cfg.Data = append(cfg.Data, VersionFile, RequirementsFile)
	if err := cfg.readVersion(); err != nil {
		return nil, err
	}
	root := cfg.Name
	if len(cfg.Packages) > 0 {
		root = cfg.Packages[0]
	}
	cfg.Distribution = Distribution{Name: cfg.Name, Package: root, Version: cfg.Version}

	reqOpts := append(slices.Clone(o.reqOpts), requires.WithRequirer(cfg.Name, cfg.Version.String()))
	if err := cfg.readRequirements(raw, reqOpts, o.logger); err != nil {
		return nil, err
	}
	if err := cfg.findNotebooks(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readVersion() error {
	path := filepath.Join(c.Dir, VersionFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Version = Version(strings.TrimSpace(string(data)))
	c.VersionFile = path
	if ok, errs := c.Version.IsValid(); !ok {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, errors.Join(errs...))
	}
	return nil
}

func (c *Config) readRequirements(raw *project, opts []requires.Option, logger *log.Logger) error {
	text, err := readOptional(filepath.Join(c.Dir, RequirementsFile))
	if err != nil {
		return err
	}
	c.Requires = requires.Parse(joinLines(text, raw.Requires), opts...)

	c.Extras = requires.NewExtras(opts...)
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}
	// ReadDir returns entries sorted by file name.
	for _, entry := range entries {
		m := extraRegex.FindStringSubmatch(entry.Name())
		if m == nil || entry.IsDir() {
			continue
		}
		if m[1] == requires.AllExtras {
			logger.Warn("skipping reserved extra", "file", entry.Name(),
				"hint", "rename the file, \""+requires.AllExtras+"\" always combines every extra")
			continue
		}
		text, err := os.ReadFile(filepath.Join(c.Dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := c.Extras.Set(m[1], joinLines(string(text), raw.Extras[m[1]])); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, entry.Name(), err)
		}
		c.Data = append(c.Data, entry.Name())
	}

	for _, name := range sortedKeys(raw.Extras) {
		if name == requires.AllExtras {
			logger.Warn("skipping reserved extra", "file", filepath.Base(c.File),
				"hint", "rename the extra, \""+requires.AllExtras+"\" always combines every extra")
			continue
		}
		if _, err := c.Extras.Get(name); err == nil {
			continue
		}
		if err := c.Extras.Set(name, joinLines("", raw.Extras[name])); err != nil {
			return fmt.Errorf("%w: %s: extra %q: %w", ErrInvalidConfig, c.File, name, err)
		}
	}
	return nil
}

func (c *Config) findNotebooks() error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".ipynb")
		if !ok || entry.IsDir() {
			continue
		}
		if name == "README" {
			c.Data = append(c.Data, entry.Name())
		}
		c.Notebooks = append(c.Notebooks, Notebook{Name: name, Path: filepath.Join(c.Dir, entry.Name())})
	}
	return nil
}

// RootPackage returns the first declared package, or "".
func (c *Config) RootPackage() string {
	if len(c.Packages) == 0 {
		return ""
	}
	return c.Packages[0]
}

// owns reports whether pkgname is one of the project's packages.
func (c *Config) owns(pkgname string) bool {
	return slices.Contains(c.Packages, pkgname) || c.Name == pkgname
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return string(data), err
}

func joinLines(text string, extra []string) string {
	if len(extra) == 0 {
		return text
	}
	return strings.Join(append([]string{text}, extra...), "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
