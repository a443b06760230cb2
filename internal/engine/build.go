package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/locator"
	"github.com/danieljhkim/wspack/internal/manifest"
)

// Build packs every workspace dependency of the package in req.CWD and
// rewrites its package.json to reference the archives.
//
// Algorithm:
// 1. Refuse to run while a backup manifest exists
// 2. Ensure the local modules directory exists
// 3. Read package.json and collect workspace dependencies
// 4. Resolve every dependency against one scan of the workspaces root
// 5. Pack all dependencies concurrently; the first failure cancels the rest
// 6. Preserve the original package.json as package_original.json
// 7. Write package.json with the workspace specifiers replaced
//
// Archives already written when a later step fails are left in place; Clean
// removes the whole directory.
func (e *Engine) Build(ctx context.Context, req *BuildRequest) (*BuildResult, error) {
	opts := req.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	artifactDir, err := config.ArtifactDir(req.CWD, opts.LocalModulesDirectory)
	if err != nil {
		return nil, err
	}

	store := manifest.NewStore(e.fs, req.CWD)

	// Step 1: A second build would overwrite the only copy of the original
	exists, err := store.BackupExists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w at %s: clean the directory before trying again", ErrBackupExists, store.BackupPath())
	}

	// Step 2: Local modules directory
	dirExists, err := e.fs.Exists(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check local modules directory: %w", err)
	}
	if dirExists {
		e.reporter.Warn(fmt.Sprintf("%s exists. Continuing...", opts.LocalModulesDirectory))
	} else {
		if err := e.fs.MkdirAll(artifactDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create local modules directory: %w", err)
		}
		e.reporter.Step(fmt.Sprintf("Created %s folder.", opts.LocalModulesDirectory))
	}

	// Step 3: Workspace dependencies
	m, err := store.Read()
	if err != nil {
		return nil, err
	}
	deps := m.WorkspaceDependencies(opts.WorkspaceIndicator)
	e.reporter.Step(fmt.Sprintf("Preparing %d dependencies...", len(deps)))

	// Step 4: Package folders
	dirs, err := e.resolveDependencies(ctx, req, deps)
	if err != nil {
		return nil, err
	}

	// Step 5: Pack
	dest, err := e.packDestination(opts.CwdFromModule, opts.LocalModulesDirectory, artifactDir)
	if err != nil {
		return nil, err
	}
	packed, err := e.packAll(ctx, deps, dirs, dest, opts.LocalModulesDirectory, opts.Jobs)
	if err != nil {
		return nil, err
	}
	e.reporter.Step("Done packing.")

	// Step 6: Preserve the original
	if err := store.Preserve(); err != nil {
		return nil, err
	}
	e.reporter.Step(fmt.Sprintf("Preserved original %s as %s.", manifest.FileName, manifest.BackupFileName))

	// Step 7: Rewrite
	for _, p := range packed {
		if err := m.SetDependency(p.Name, p.Reference); err != nil {
			return nil, err
		}
	}
	if err := store.Write(m); err != nil {
		return nil, err
	}

	return &BuildResult{
		ManifestPath:       store.Path(),
		BackupPath:         store.BackupPath(),
		ArtifactDir:        artifactDir,
		CreatedArtifactDir: !dirExists,
		Packed:             packed,
	}, nil
}

// resolveDependencies maps each dependency to its sibling package directory.
func (e *Engine) resolveDependencies(ctx context.Context, req *BuildRequest, deps []manifest.Dependency) ([]string, error) {
	if len(deps) == 0 {
		return nil, nil
	}

	loc, err := locator.New(e.fs,
		resolvePath(req.CWD, req.Options.WorkspacesRoot),
		locator.WithExclude(req.Options.Exclude...),
		locator.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}

	idx, err := loc.Index(ctx)
	if err != nil {
		return nil, err
	}

	dirs := make([]string, len(deps))
	for i, dep := range deps {
		dir, err := idx.Lookup(dep.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: could not find package folder for %s: %w", ErrDependencyNotFound, dep.Name, err)
		}
		dirs[i] = dir
	}
	return dirs, nil
}

// packDestination returns the --pack-destination argument. With cwdFromModule
// set it is relative to each dependency's directory; otherwise it is absolute.
func (e *Engine) packDestination(cwdFromModule, localModulesDirectory, artifactDir string) (string, error) {
	if cwdFromModule != "" {
		return filepath.Join(cwdFromModule, localModulesDirectory), nil
	}
	abs, err := filepath.Abs(artifactDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve local modules directory: %w", err)
	}
	return abs, nil
}

// packAll packs every dependency concurrently, at most jobs at a time when
// jobs > 0. Results keep the order of deps.
func (e *Engine) packAll(ctx context.Context, deps []manifest.Dependency, dirs []string, dest, localModulesDirectory string, jobs int) ([]PackedDependency, error) {
	packed := make([]PackedDependency, len(deps))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, dep := range deps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.reporter.Step(fmt.Sprintf("Packing %s from %s", dep.Name, dirs[i]))
			e.logger.Debug("running packager", "dependency", dep.Name, "dir", dirs[i], "dest", dest)

			artifact, err := e.packager.Pack(ctx, dirs[i], dest)
			if err != nil {
				return fmt.Errorf("failed to pack %s: %w", dep.Name, err)
			}

			packed[i] = PackedDependency{
				Name:      dep.Name,
				Specifier: dep.Specifier,
				Dir:       dirs[i],
				Artifact:  artifact,
				Reference: ArtifactReference(localModulesDirectory, artifact),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return packed, nil
}

// ArtifactReference returns the file: specifier for an archive in the local
// modules directory, relative to the package directory.
func ArtifactReference(localModulesDirectory, artifact string) string {
	path := filepath.Join(localModulesDirectory, artifact)
	if filepath.IsAbs(path) {
		return "file:" + path
	}
	return "file:." + string(filepath.Separator) + path
}
