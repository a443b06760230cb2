package engine

import (
	"github.com/danieljhkim/wspack/internal/hash"
)

// PackedDependency describes one workspace dependency replaced by an archive.
type PackedDependency struct {
	// Name is the dependency's package name
	Name string `json:"name"`

	// Specifier is the original workspace version specifier
	Specifier string `json:"specifier"`

	// Dir is the sibling package directory that was packed
	Dir string `json:"dir"`

	// Artifact is the archive file name inside the local modules directory
	Artifact string `json:"artifact"`

	// Reference is the file: specifier written into the rewritten manifest
	Reference string `json:"reference"`
}

// BuildResult represents the result of a build.
type BuildResult struct {
	// ManifestPath is the rewritten package.json
	ManifestPath string `json:"manifestPath"`

	// BackupPath holds the original package.json
	BackupPath string `json:"backupPath"`

	// ArtifactDir is the local modules directory
	ArtifactDir string `json:"artifactDir"`

	// CreatedArtifactDir is false when the directory already existed
	CreatedArtifactDir bool `json:"createdArtifactDir"`

	// Packed lists the replaced dependencies in manifest order
	Packed []PackedDependency `json:"packed"`
}

// CleanResult represents the result of a clean.
type CleanResult struct {
	// ArtifactDir is the local modules directory
	ArtifactDir string `json:"artifactDir"`

	// RemovedArtifactDir is true when the directory existed and was removed
	RemovedArtifactDir bool `json:"removedArtifactDir"`

	// Restored is true when the original package.json was put back
	Restored bool `json:"restored"`

	// AlreadyClean is true when no backup manifest was found
	AlreadyClean bool `json:"alreadyClean"`
}

// ArtifactInfo describes one archive in the local modules directory.
type ArtifactInfo struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	Digest hash.Digest `json:"digest"`
}

// StatusResult represents the build state of a package directory.
type StatusResult struct {
	// Applied is true when a backup manifest exists
	Applied bool `json:"applied"`

	// ManifestPath is the canonical package.json
	ManifestPath string `json:"manifestPath"`

	// BackupPath is where the original package.json is kept while applied
	BackupPath string `json:"backupPath"`

	// ArtifactDir is the local modules directory
	ArtifactDir string `json:"artifactDir"`

	// ArtifactDirExists reports whether the local modules directory is present
	ArtifactDirExists bool `json:"artifactDirExists"`

	// Artifacts lists files found in the local modules directory
	Artifacts []ArtifactInfo `json:"artifacts"`
}
