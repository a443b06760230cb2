// Package config resolves wspack's build and clean options.
//
// Options come from three layers, later layers winning field by field:
// built-in defaults, an optional .wspack.yaml in the package directory, and
// command-line flags. The packager default can also be overridden with the
// WSPACK_PACKAGER environment variable.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/wspack/internal/manifest"
	"github.com/danieljhkim/wspack/internal/packager"
)

const (
	// DefaultLocalModulesDirectory holds packed archives during a deployment build.
	DefaultLocalModulesDirectory = "./local_modules"

	// DefaultWorkspacesRoot is searched for sibling packages.
	DefaultWorkspacesRoot = "../"

	// ProjectFileName is the optional per-package config file.
	ProjectFileName = ".wspack.yaml"

	// EnvPackager overrides the default packaging command.
	EnvPackager = "WSPACK_PACKAGER"
)

// DefaultExclude lists sibling directory patterns never treated as packages.
var DefaultExclude = []string{"node_modules", ".*"}

// ErrInvalidOptions indicates options failed validation.
var ErrInvalidOptions = errors.New("invalid options")

// BuildOptions configures the build procedure.
type BuildOptions struct {
	// LocalModulesDirectory receives the packed archives.
	LocalModulesDirectory string `yaml:"localModulesDirectory"`

	// WorkspaceIndicator marks a dependency specifier as workspace-local.
	WorkspaceIndicator string `yaml:"workspaceIndicator"`

	// CwdFromModule is the path from a dependency's directory back to this package.
	// Empty means the archive destination is resolved to an absolute path.
	CwdFromModule string `yaml:"cwdFromModule"`

	// WorkspacesRoot is the directory whose subdirectories are searched for packages.
	WorkspacesRoot string `yaml:"workspacesRoot"`

	// Packager is the package manager executable used to pack dependencies.
	Packager string `yaml:"packager"`

	// Exclude lists doublestar patterns of sibling directory names to skip.
	Exclude []string `yaml:"exclude"`

	// Jobs bounds concurrent pack subprocesses; 0 means unbounded.
	Jobs int `yaml:"jobs"`
}

// CleanOptions configures the clean procedure.
type CleanOptions struct {
	LocalModulesDirectory string
}

// DefaultBuildOptions returns the built-in defaults.
func DefaultBuildOptions() BuildOptions {
	pm := os.Getenv(EnvPackager)
	if pm == "" {
		pm = packager.DefaultCommand
	}
	return BuildOptions{
		LocalModulesDirectory: DefaultLocalModulesDirectory,
		WorkspaceIndicator:    manifest.DefaultWorkspaceIndicator,
		WorkspacesRoot:        DefaultWorkspacesRoot,
		Packager:              pm,
		Exclude:               append([]string(nil), DefaultExclude...),
	}
}

// Merge returns o with every non-zero field of override applied on top.
func (o BuildOptions) Merge(override BuildOptions) BuildOptions {
	if override.LocalModulesDirectory != "" {
		o.LocalModulesDirectory = override.LocalModulesDirectory
	}
	if override.WorkspaceIndicator != "" {
		o.WorkspaceIndicator = override.WorkspaceIndicator
	}
	if override.CwdFromModule != "" {
		o.CwdFromModule = override.CwdFromModule
	}
	if override.WorkspacesRoot != "" {
		o.WorkspacesRoot = override.WorkspacesRoot
	}
	if override.Packager != "" {
		o.Packager = override.Packager
	}
	if override.Exclude != nil {
		o.Exclude = append([]string{}, override.Exclude...)
	}
	if override.Jobs != 0 {
		o.Jobs = override.Jobs
	}
	return o
}

// Validate checks the options for values the build cannot work with.
func (o BuildOptions) Validate() error {
	if o.LocalModulesDirectory == "" {
		return fmt.Errorf("%w: localModulesDirectory must not be empty", ErrInvalidOptions)
	}
	if o.WorkspaceIndicator == "" {
		return fmt.Errorf("%w: workspaceIndicator must not be empty", ErrInvalidOptions)
	}
	if o.WorkspacesRoot == "" {
		return fmt.Errorf("%w: workspacesRoot must not be empty", ErrInvalidOptions)
	}
	if o.Packager == "" {
		return fmt.Errorf("%w: packager must not be empty", ErrInvalidOptions)
	}
	if o.Jobs < 0 {
		return fmt.Errorf("%w: jobs must be >= 0 (got %d)", ErrInvalidOptions, o.Jobs)
	}
	return nil
}

// Validate checks the options for values the clean cannot work with.
func (o CleanOptions) Validate() error {
	if o.LocalModulesDirectory == "" {
		return fmt.Errorf("%w: localModulesDirectory must not be empty", ErrInvalidOptions)
	}
	return nil
}

// ArtifactDir resolves the local modules directory against cwd. The result
// must lie strictly inside cwd; clean removes it recursively.
func ArtifactDir(cwd, localModulesDirectory string) (string, error) {
	if localModulesDirectory == "" {
		return "", fmt.Errorf("%w: localModulesDirectory must not be empty", ErrInvalidOptions)
	}

	base := filepath.Clean(cwd)
	dir := filepath.Clean(localModulesDirectory)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}

	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: localModulesDirectory %q must be a subdirectory of %s", ErrInvalidOptions, localModulesDirectory, base)
	}
	return dir, nil
}

// LoadFile reads .wspack.yaml from dir. A missing file yields zero options.
func LoadFile(dir string) (BuildOptions, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BuildOptions{}, nil
		}
		return BuildOptions{}, fmt.Errorf("reading %s: %w", ProjectFileName, err)
	}
	return ParseFile(data)
}

// ParseFile parses .wspack.yaml content. Unknown keys are rejected.
func ParseFile(data []byte) (BuildOptions, error) {
	var opts BuildOptions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return BuildOptions{}, fmt.Errorf("parsing %s: %w", ProjectFileName, err)
	}
	return opts, nil
}

// ResolveBuild layers defaults, the project file in dir, and flags.
func ResolveBuild(dir string, flags BuildOptions) (BuildOptions, error) {
	file, err := LoadFile(dir)
	if err != nil {
		return BuildOptions{}, err
	}
	opts := DefaultBuildOptions().Merge(file).Merge(flags)
	if err := opts.Validate(); err != nil {
		return BuildOptions{}, err
	}
	return opts, nil
}

// ResolveClean layers the default, the project file in dir, and flags.
func ResolveClean(dir string, flags CleanOptions) (CleanOptions, error) {
	file, err := LoadFile(dir)
	if err != nil {
		return CleanOptions{}, err
	}
	opts := CleanOptions{LocalModulesDirectory: DefaultLocalModulesDirectory}
	if file.LocalModulesDirectory != "" {
		opts.LocalModulesDirectory = file.LocalModulesDirectory
	}
	if flags.LocalModulesDirectory != "" {
		opts.LocalModulesDirectory = flags.LocalModulesDirectory
	}
	if err := opts.Validate(); err != nil {
		return CleanOptions{}, err
	}
	return opts, nil
}
