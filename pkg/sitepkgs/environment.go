// SPDX-License-Identifier: MPL-2.0

package sitepkgs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zetup/zetup/pkg/requires"
)

// DefaultCacheSize is the number of distribution lookups an Environment remembers.
const DefaultCacheSize = 256

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

var normalizeRegex = regexp.MustCompile(`[-_.]+`)

type (
	// Environment is an installed Python environment given by its search paths.
	// It is safe for concurrent use.
	Environment struct {
		paths []string
		dists *lru.Cache[string, *requires.Distribution]
	}

	// Option configures New.
	Option func(*options)

	options struct {
		cacheSize int
	}
)

// WithCacheSize sets the distribution lookup cache size.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New returns an environment searching paths in order. Empty paths are dropped.
func New(paths []string, opts ...Option) (*Environment, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := lru.New[string, *requires.Distribution](o.cacheSize)
	if err != nil {
		return nil, err
	}
	env := &Environment{dists: cache}
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			env.paths = append(env.paths, filepath.Clean(p))
		}
	}
	return env, nil
}

// Paths returns the search paths.
func (e *Environment) Paths() []string {
	return slices.Clone(e.paths)
}

// Normalize returns the PEP 503 normalized form of a project name.
func Normalize(name string) string {
	return strings.ToLower(normalizeRegex.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// FindDistribution returns the metadata of the first installed distribution
// named name, compared in normalized form. Unknown names yield an error
// wrapping requires.ErrUnknownDistribution. Misses are cached too.
func (e *Environment) FindDistribution(name string) (*requires.Distribution, error) {
	key := Normalize(name)
	if dist, ok := e.dists.Get(key); ok {
		if dist == nil {
			return nil, fmt.Errorf("%w: %s", requires.ErrUnknownDistribution, name)
		}
		return dist, nil
	}

	for _, root := range e.paths {
		dist, err := findIn(root, key)
		if err != nil {
			return nil, err
		}
		if dist != nil {
			e.dists.Add(key, dist)
			return dist, nil
		}
	}
	e.dists.Add(key, nil)
	return nil, fmt.Errorf("%w: %s", requires.ErrUnknownDistribution, name)
}

// Distributions lists every distribution on the search paths. A name
// installed on several paths is reported once, from the first path.
func (e *Environment) Distributions() ([]*requires.Distribution, error) {
	seen := map[string]bool{}
	var out []*requires.Distribution
	for _, root := range e.paths {
		entries, err := metadataEntries(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			dist, err := readDistribution(root, entry)
			if err != nil {
				return nil, err
			}
			if dist == nil || seen[Normalize(dist.Name)] {
				continue
			}
			seen[Normalize(dist.Name)] = true
			out = append(out, dist)
		}
	}
	return out, nil
}

// Invalidate drops all cached lookups.
func (e *Environment) Invalidate() {
	e.dists.Purge()
}

func findIn(root, key string) (*requires.Distribution, error) {
	entries, err := metadataEntries(root)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		stem, _ := cutMetadataSuffix(entry)
		namePart, _, _ := strings.Cut(stem, "-")
		if Normalize(namePart) != key {
			continue
		}
		dist, err := readDistribution(root, entry)
		if err != nil {
			return nil, err
		}
		if dist != nil && Normalize(dist.Name) == key {
			return dist, nil
		}
	}
	return nil, nil
}

func metadataEntries(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "*{"+distInfoSuffix+","+eggInfoSuffix+"}")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return matches, nil
}

func cutMetadataSuffix(entry string) (string, string) {
	for _, suffix := range []string{distInfoSuffix, eggInfoSuffix} {
		if stem, ok := strings.CutSuffix(entry, suffix); ok {
			return stem, suffix
		}
	}
	return entry, ""
}

// readDistribution reads the metadata of one *.dist-info or *.egg-info
// entry. An egg-info may be a directory holding PKG-INFO or the metadata file
// itself. Entries without a metadata file yield nil.
func readDistribution(root, entry string) (*requires.Distribution, error) {
	path := filepath.Join(root, entry)
	stem, suffix := cutMetadataSuffix(entry)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	file := path
	switch {
	case info.IsDir() && suffix == distInfoSuffix:
		file = filepath.Join(path, "METADATA")
	case info.IsDir():
		file = filepath.Join(path, "PKG-INFO")
	}

	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	namePart, versionPart, _ := strings.Cut(stem, "-")
	versionPart, _, _ = strings.Cut(versionPart, "-")
	dist := &requires.Distribution{
		Name:     header.Get("Name"),
		Version:  header.Get("Version"),
		Location: root,
	}
	if dist.Name == "" {
		dist.Name = namePart
	}
	if dist.Version == "" {
		dist.Version = versionPart
	}
	return dist, nil
}

// readHeader parses the RFC 822 style header block of a metadata file.
// Malformed lines end the block; only a block without any field is an error.
func readHeader(r io.Reader) (textproto.MIMEHeader, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) && len(header) == 0 {
		return nil, err
	}
	return header, nil
}
