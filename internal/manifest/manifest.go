// Package manifest reads, rewrites and restores package.json manifests.
//
// A Manifest keeps the key order of the document it was parsed from, both at
// the top level and inside "dependencies", so a rewritten manifest differs
// from the original only in the dependency specifiers that were replaced.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// FileName is the canonical manifest file name.
	FileName = "package.json"

	// BackupFileName holds the untouched manifest while a build is applied.
	BackupFileName = "package_original.json"

	dependenciesKey = "dependencies"
	nameKey         = "name"
	indent          = "    "
)

var (
	// ErrParse indicates a manifest document is malformed.
	ErrParse = errors.New("manifest parse error")

	// ErrMissingName indicates a manifest has no string "name" field.
	ErrMissingName = errors.New("manifest has no name")
)

// Manifest is a parsed package manifest.
type Manifest struct {
	doc  *object
	deps *object
}

// Parse parses manifest content.
func Parse(data []byte) (*Manifest, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	m := &Manifest{doc: doc, deps: newObject()}
	if raw, ok := doc.get(dependenciesKey); ok {
		deps, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: dependencies: %v", ErrParse, err)
		}
		for _, name := range deps.keys {
			var spec string
			if err := json.Unmarshal(deps.values[name], &spec); err != nil {
				return nil, fmt.Errorf("%w: dependency %q: version must be a string", ErrParse, name)
			}
		}
		m.deps = deps
	}

	return m, nil
}

// Name returns the manifest's "name" field.
func (m *Manifest) Name() (string, error) {
	raw, ok := m.doc.get(nameKey)
	if !ok {
		return "", ErrMissingName
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return "", ErrMissingName
	}
	return name, nil
}

// Dependencies returns every declared dependency in document order,
// classified against indicator.
func (m *Manifest) Dependencies(indicator string) []Dependency {
	deps := make([]Dependency, 0, len(m.deps.keys))
	for _, name := range m.deps.keys {
		deps = append(deps, Classify(name, m.specifier(name), indicator))
	}
	return deps
}

// WorkspaceDependencies returns only the workspace-local dependencies.
func (m *Manifest) WorkspaceDependencies(indicator string) []Dependency {
	var deps []Dependency
	for _, dep := range m.Dependencies(indicator) {
		if dep.IsWorkspace() {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Specifier returns the version specifier declared for name.
func (m *Manifest) Specifier(name string) (string, bool) {
	if _, ok := m.deps.get(name); !ok {
		return "", false
	}
	return m.specifier(name), true
}

func (m *Manifest) specifier(name string) string {
	var spec string
	_ = json.Unmarshal(m.deps.values[name], &spec)
	return spec
}

// SetDependency replaces the specifier of name, or appends it when absent.
func (m *Manifest) SetDependency(name, specifier string) error {
	raw, err := encodeString(specifier)
	if err != nil {
		return fmt.Errorf("failed to encode specifier for %q: %w", name, err)
	}
	m.deps.set(name, raw)

	deps, err := m.deps.encode()
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}
	m.doc.set(dependenciesKey, deps)
	return nil
}

// Marshal serializes the manifest with 4-space indentation and a trailing newline.
func (m *Manifest) Marshal() ([]byte, error) {
	compact, err := m.doc.encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", indent); err != nil {
		return nil, fmt.Errorf("failed to indent manifest: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
