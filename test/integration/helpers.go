package integration

import (
	"context"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danieljhkim/wspack/internal/engine"
	"github.com/danieljhkim/wspack/internal/hash"
	"github.com/danieljhkim/wspack/internal/packager"
)

// testFS is a filesystem implementation that tracks files in memory for testing.
// The locator reads manifests concurrently, so access is guarded.
type testFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

func newTestFS() *testFS {
	return &testFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (fs *testFS) Exists(path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	_, hasFile := fs.files[path]
	return hasFile || fs.dirs[path], nil
}

func (fs *testFS) MkdirAll(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.mkdirAll(filepath.Clean(path))
	return nil
}

func (fs *testFS) mkdirAll(path string) {
	for {
		fs.dirs[path] = true
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

func (fs *testFS) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := fs.files[path]; ok {
		delete(fs.files, path)
		return nil
	}
	if fs.dirs[path] {
		delete(fs.dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

func (fs *testFS) RemoveAll(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	delete(fs.files, path)
	delete(fs.dirs, path)

	pathPrefix := path + string(filepath.Separator)
	for p := range fs.files {
		if strings.HasPrefix(p, pathPrefix) {
			delete(fs.files, p)
		}
	}
	for p := range fs.dirs {
		if strings.HasPrefix(p, pathPrefix) {
			delete(fs.dirs, p)
		}
	}
	return nil
}

func (fs *testFS) Rename(oldpath, newpath string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	content, ok := fs.files[oldpath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrNotExist}
	}
	delete(fs.files, oldpath)
	fs.files[newpath] = content
	return nil
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	fs.mkdirAll(filepath.Dir(path))
	fs.files[path] = append([]byte(nil), data...)
	return nil
}

func (fs *testFS) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
}

func (fs *testFS) ReadDir(path string) ([]os.DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = filepath.Clean(path)
	if !fs.dirs[path] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	var entries []os.DirEntry
	for p, content := range fs.files {
		if filepath.Dir(p) == path {
			entries = append(entries, iofs.FileInfoToDirEntry(&mockFileInfo{name: filepath.Base(p), size: int64(len(content))}))
		}
	}
	for p := range fs.dirs {
		if p != path && filepath.Dir(p) == path {
			entries = append(entries, iofs.FileInfoToDirEntry(&mockFileInfo{name: filepath.Base(p), isDir: true}))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// write stores a file and its parent directories.
func (fs *testFS) write(path, content string) {
	_ = fs.AtomicWrite(path, []byte(content), 0644)
}

// read returns a file's content, with ok false when it is missing.
func (fs *testFS) read(path string) (string, bool) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// filesUnder lists the base names of files directly inside dir.
func (fs *testFS) filesUnder(dir string) []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	dir = filepath.Clean(dir)
	var names []string
	for p := range fs.files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names
}

// mockFileInfo implements os.FileInfo
type mockFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (m *mockFileInfo) Name() string { return m.name }
func (m *mockFileInfo) Size() int64  { return m.size }
func (m *mockFileInfo) Mode() os.FileMode {
	if m.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// testPackager "packs" a directory by writing <dir>-1.0.0.tgz into the
// destination of the in-memory filesystem.
type testPackager struct {
	fs *testFS

	mu    sync.Mutex
	packs []string
}

func (p *testPackager) Pack(ctx context.Context, sourceDir, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := destDir
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(sourceDir, dest)
	}
	if ok, _ := p.fs.Exists(dest); !ok {
		return "", &packager.Error{Command: "pack", Dir: sourceDir, ExitCode: 1, Stderr: "no such directory: " + dest, Err: os.ErrNotExist}
	}

	name := filepath.Base(sourceDir) + "-1.0.0.tgz"
	p.fs.write(filepath.Join(dest, name), "tarball:"+sourceDir)

	p.mu.Lock()
	p.packs = append(p.packs, filepath.Base(sourceDir))
	p.mu.Unlock()
	return name, nil
}

// packed returns the packed directory names, sorted.
func (p *testPackager) packed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]string(nil), p.packs...)
	sort.Strings(out)
	return out
}

// memHasher sizes the in-memory file so Status works without disk access.
type memHasher struct {
	fs *testFS
}

func (h *memHasher) HashFile(path string) (hash.Digest, error) {
	data, err := h.fs.ReadFile(path)
	if err != nil {
		return hash.Digest{}, err
	}
	return hash.Digest{SHA256: "mem", Size: int64(len(data))}, nil
}

// testEnv wires an engine against the in-memory filesystem. The root is a
// real temp dir path so absolute path handling matches the host platform.
type testEnv struct {
	root     string
	app      string
	fs       *testFS
	packager *testPackager
	engine   *engine.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	mfs := newTestFS()
	mfs.mkdirAll(root)
	pk := &testPackager{fs: mfs}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		root:     root,
		app:      filepath.Join(root, "app"),
		fs:       mfs,
		packager: pk,
		engine:   engine.New(mfs, pk, &memHasher{fs: mfs}, nil, logger),
	}
}

// path joins a slash-separated path onto the monorepo root.
func (env *testEnv) path(rel string) string {
	return filepath.Join(env.root, filepath.FromSlash(rel))
}
