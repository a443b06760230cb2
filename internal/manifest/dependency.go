package manifest

import "strings"

// DefaultWorkspaceIndicator marks a version specifier as workspace-local.
const DefaultWorkspaceIndicator = "workspace:"

// Kind tells how a dependency's version specifier is resolved.
type Kind int

const (
	// Registry dependencies are resolved by the package registry.
	Registry Kind = iota
	// Workspace dependencies point at a sibling package in the monorepo.
	Workspace
)

func (k Kind) String() string {
	switch k {
	case Workspace:
		return "workspace"
	case Registry:
		return "registry"
	default:
		return "unknown"
	}
}

// Dependency is a single entry of a manifest's dependencies mapping.
type Dependency struct {
	Name      string
	Specifier string
	Kind      Kind
}

// IsWorkspace reports whether the dependency is workspace-local.
func (d Dependency) IsWorkspace() bool {
	return d.Kind == Workspace
}

// Classify tags a dependency as Workspace when its specifier contains the
// indicator substring, and Registry otherwise.
func Classify(name, specifier, indicator string) Dependency {
	kind := Registry
	if strings.Contains(specifier, indicator) {
		kind = Workspace
	}
	return Dependency{Name: name, Specifier: specifier, Kind: kind}
}
