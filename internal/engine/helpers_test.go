package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/fsops"
	"github.com/danieljhkim/wspack/internal/hash"
	"github.com/danieljhkim/wspack/internal/manifest"
	"github.com/danieljhkim/wspack/internal/packager"
)

// fakePackager writes a placeholder archive into the destination directory.
type fakePackager struct {
	mu       sync.Mutex
	calls    []packCall
	names    map[string]string // archive name, by source dir base name
	fail     map[string]bool   // by source dir base name
	block    map[string]bool   // wait for cancellation, by source dir base name
	active   int
	maxInUse int
}

type packCall struct {
	SourceDir string
	DestDir   string
}

func newFakePackager() *fakePackager {
	return &fakePackager{names: map[string]string{}, fail: map[string]bool{}, block: map[string]bool{}}
}

func (p *fakePackager) Pack(ctx context.Context, sourceDir, destDir string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, packCall{SourceDir: sourceDir, DestDir: destDir})
	p.active++
	if p.active > p.maxInUse {
		p.maxInUse = p.active
	}
	fail := p.fail[filepath.Base(sourceDir)]
	block := p.block[filepath.Base(sourceDir)]
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if fail {
		return "", &packager.Error{
			Command:  "pnpm pack --pack-destination " + destDir,
			Dir:      sourceDir,
			ExitCode: 1,
			Stderr:   "ERR_PNPM_PACK failed",
			Err:      fmt.Errorf("exit status 1"),
		}
	}

	artifact := p.artifactName(sourceDir)

	dest := destDir
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(sourceDir, dest)
	}
	if err := os.WriteFile(filepath.Join(dest, artifact), []byte("tarball:"+artifact), 0644); err != nil {
		return "", err
	}
	return artifact, nil
}

func (p *fakePackager) artifactName(sourceDir string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name, ok := p.names[filepath.Base(sourceDir)]; ok {
		return name
	}
	return filepath.Base(sourceDir) + "-1.0.0.tgz"
}

func (p *fakePackager) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// recordingReporter captures progress messages.
type recordingReporter struct {
	mu    sync.Mutex
	steps []string
	warns []string
}

func (r *recordingReporter) Step(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, msg)
}

func (r *recordingReporter) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

// monorepo is an on-disk fixture: root/app is the package being deployed and
// every other directory under root is a sibling package.
type monorepo struct {
	root string
	app  string
}

func newMonorepo(t *testing.T, appManifest string) *monorepo {
	t.Helper()
	root := t.TempDir()
	mr := &monorepo{root: root, app: filepath.Join(root, "app")}
	mr.write(t, "app/package.json", appManifest)
	return mr
}

func (mr *monorepo) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(mr.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func (mr *monorepo) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(mr.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

func (mr *monorepo) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(mr.root, filepath.FromSlash(rel)))
	return err == nil
}

func newTestEngine(pk packager.Packager, reporter Reporter) *Engine {
	return New(fsops.NewRealFS(), pk, hash.NewSHA256Hasher(), reporter, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func buildOptions() config.BuildOptions {
	return config.BuildOptions{
		LocalModulesDirectory: config.DefaultLocalModulesDirectory,
		WorkspaceIndicator:    manifest.DefaultWorkspaceIndicator,
		WorkspacesRoot:        config.DefaultWorkspacesRoot,
		Packager:              packager.DefaultCommand,
		Exclude:               config.DefaultExclude,
	}
}

func cleanOptions() config.CleanOptions {
	return config.CleanOptions{LocalModulesDirectory: config.DefaultLocalModulesDirectory}
}

// fileRef is the expected file: specifier for an archive in ./local_modules.
func fileRef(artifact string) string {
	return "file:." + string(filepath.Separator) + filepath.Join("local_modules", artifact)
}
