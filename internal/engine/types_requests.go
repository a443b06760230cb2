package engine

import "github.com/danieljhkim/wspack/internal/config"

// BuildRequest represents a request to prepare a package for deployment.
type BuildRequest struct {
	// CWD is the package directory holding package.json
	CWD string

	// Options are the resolved build options
	Options config.BuildOptions
}

// CleanRequest represents a request to undo a build.
type CleanRequest struct {
	// CWD is the package directory holding package.json
	CWD string

	// Options are the resolved clean options
	Options config.CleanOptions
}

// StatusRequest represents a request for the build state of a package.
type StatusRequest struct {
	// CWD is the package directory holding package.json
	CWD string

	// LocalModulesDirectory is where packed archives are expected
	LocalModulesDirectory string
}
