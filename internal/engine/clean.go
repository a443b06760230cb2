package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/manifest"
)

// Clean reverses Build in req.CWD.
//
// Algorithm:
// 1. Remove the local modules directory (missing is fine). It must lie inside req.CWD
// 2. If no backup manifest exists the directory is already clean
// 3. Otherwise delete the rewritten package.json and rename the backup into place
func (e *Engine) Clean(ctx context.Context, req *CleanRequest) (*CleanResult, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	artifactDir, err := config.ArtifactDir(req.CWD, req.Options.LocalModulesDirectory)
	if err != nil {
		return nil, err
	}
	result := &CleanResult{ArtifactDir: artifactDir}

	// Step 1: Archives
	existed, err := e.fs.Exists(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check local modules directory: %w", err)
	}
	if err := e.fs.RemoveAll(artifactDir); err != nil {
		return nil, fmt.Errorf("failed to remove local modules directory: %w", err)
	}
	result.RemovedArtifactDir = existed
	e.reporter.Step("Removed local modules folder.")

	// Step 2: Backup manifest
	store := manifest.NewStore(e.fs, req.CWD)
	exists, err := store.BackupExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		result.AlreadyClean = true
		return result, nil
	}

	// Step 3: Restore
	if err := store.Restore(); err != nil {
		return nil, err
	}
	result.Restored = true

	return result, nil
}
