package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/wspack/internal/manifest"
)

// Status reports whether a build is applied in req.CWD and which archives the
// local modules directory holds.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	store := manifest.NewStore(e.fs, req.CWD)
	artifactDir := resolvePath(req.CWD, req.LocalModulesDirectory)

	applied, err := store.BackupExists()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Applied:      applied,
		ManifestPath: store.Path(),
		BackupPath:   store.BackupPath(),
		ArtifactDir:  artifactDir,
		Artifacts:    []ArtifactInfo{},
	}

	exists, err := e.fs.Exists(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check local modules directory: %w", err)
	}
	if !exists {
		return result, nil
	}
	result.ArtifactDirExists = true

	entries, err := e.fs.ReadDir(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read local modules directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(artifactDir, entry.Name())
		digest, err := e.hasher.HashFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", entry.Name(), err)
		}
		result.Artifacts = append(result.Artifacts, ArtifactInfo{
			Name:   entry.Name(),
			Path:   path,
			Digest: digest,
		})
	}

	return result, nil
}
