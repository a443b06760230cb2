// Package locator finds sibling packages of a monorepo by manifest name.
//
// A workspaces root is scanned one level deep. Every immediate subdirectory
// whose package.json parses and carries a name is a candidate; anything else
// is not a package and is skipped.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/wspack/internal/fsops"
	"github.com/danieljhkim/wspack/internal/manifest"
)

// ErrNotFound indicates no sibling directory declares the requested name.
var ErrNotFound = errors.New("package folder not found")

// Locator scans a workspaces root for packages.
type Locator struct {
	fs      fsops.FS
	root    string
	exclude []string
	logger  *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithExclude skips subdirectories whose name matches any of the doublestar patterns.
func WithExclude(patterns ...string) Option {
	return func(l *Locator) {
		l.exclude = append(l.exclude, patterns...)
	}
}

// WithLogger sets the logger used for skipped candidates.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// New creates a Locator for root.
func New(fs fsops.FS, root string, opts ...Option) (*Locator, error) {
	l := &Locator{
		fs:     fs,
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	for _, pattern := range l.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return l, nil
}

// Index maps package names to the directories that declare them.
type Index struct {
	root  string
	dirs  map[string]string
	names []string
}

// Lookup returns the directory of the package called name.
func (idx *Index) Lookup(name string) (string, error) {
	dir, ok := idx.dirs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s under %s", ErrNotFound, name, idx.root)
	}
	return dir, nil
}

// Names returns the indexed package names in directory order.
func (idx *Index) Names() []string {
	return append([]string(nil), idx.names...)
}

// candidate is the outcome of inspecting one subdirectory.
type candidate struct {
	dir  string
	name string
}

// Index scans every immediate subdirectory of the root concurrently.
//
// When two directories declare the same name, the first in lexical directory
// order wins and the others are logged at warn level.
func (l *Locator) Index(ctx context.Context) (*Index, error) {
	entries, err := l.fs.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspaces root %s: %w", l.root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			continue
		}
		excluded, err := l.excluded(entry.Name())
		if err != nil {
			return nil, err
		}
		if excluded {
			l.logger.Debug("excluded from package search", "dir", entry.Name())
			continue
		}
		dirs = append(dirs, entry.Name())
	}

	candidates := make([]candidate, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	for i, dirName := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dir := filepath.Join(l.root, dirName)
			name, err := l.packageName(dir)
			if err != nil {
				l.logger.Debug("not a package, skipping", "dir", dirName, "reason", err)
				return nil
			}
			candidates[i] = candidate{dir: dir, name: name}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{root: l.root, dirs: make(map[string]string)}
	for _, c := range candidates {
		if c.name == "" {
			continue
		}
		if first, ok := idx.dirs[c.name]; ok {
			l.logger.Warn("duplicate package name, keeping first", "name", c.name, "kept", first, "ignored", c.dir)
			continue
		}
		idx.dirs[c.name] = c.dir
		idx.names = append(idx.names, c.name)
	}
	l.logger.Debug("indexed workspace packages", "root", l.root, "packages", idx.Names())

	return idx, nil
}

// Locate returns the directory of the sibling package called name.
func (l *Locator) Locate(ctx context.Context, name string) (string, error) {
	idx, err := l.Index(ctx)
	if err != nil {
		return "", err
	}
	return idx.Lookup(name)
}

func (l *Locator) packageName(dir string) (string, error) {
	m, err := manifest.Read(l.fs, filepath.Join(dir, manifest.FileName))
	if err != nil {
		return "", err
	}
	return m.Name()
}

func (l *Locator) excluded(name string) (bool, error) {
	for _, pattern := range l.exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
