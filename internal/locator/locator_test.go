package locator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danieljhkim/wspack/internal/fsops"
)

func writePackage(t *testing.T, root, dir, content string) {
	t.Helper()
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	if content == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(path, "package.json"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest for %s: %v", dir, err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLocator(t *testing.T, root string, opts ...Option) *Locator {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	l, err := New(fsops.NewRealFS(), root, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestLocate_SingleMatch(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "app", `{"name": "app"}`)
	writePackage(t, root, "util-pkg", `{"name": "@org/util", "version": "1.0.0"}`)
	writePackage(t, root, "ui", `{"name": "@org/ui"}`)

	l := newTestLocator(t, root)
	dir, err := l.Locate(context.Background(), "@org/util")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if want := filepath.Join(root, "util-pkg"); dir != want {
		t.Errorf("Locate() = %q, want %q", dir, want)
	}
}

func TestLocate_NotFound(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "app", `{"name": "app"}`)

	l := newTestLocator(t, root)
	_, err := l.Locate(context.Background(), "@org/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Locate() error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "@org/missing") {
		t.Errorf("error %q should name the missing package", err)
	}
}

func TestLocate_EmptyRoot(t *testing.T) {
	l := newTestLocator(t, t.TempDir())
	if _, err := l.Locate(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Locate() error = %v, want ErrNotFound", err)
	}
}

func TestLocate_MissingRoot(t *testing.T) {
	l := newTestLocator(t, filepath.Join(t.TempDir(), "nope"))
	_, err := l.Locate(context.Background(), "x")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Locate() error = %v, want a read error", err)
	}
}

func TestIndex_SkipsNonPackages(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "no-manifest", "")
	writePackage(t, root, "broken", `{"name": `)
	writePackage(t, root, "nameless", `{"version": "1.0.0"}`)
	writePackage(t, root, "good", `{"name": "good"}`)
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# monorepo"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l, err := New(fsops.NewRealFS(), root, WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	idx, err := l.Index(context.Background())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if diff := cmp.Diff([]string{"good"}, idx.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	for _, dir := range []string{"no-manifest", "broken", "nameless"} {
		if !strings.Contains(logs.String(), "dir="+dir) {
			t.Errorf("expected debug log for skipped %s, got:\n%s", dir, logs.String())
		}
	}
	if !strings.Contains(logs.String(), "indexed workspace packages") || !strings.Contains(logs.String(), "packages=[good]") {
		t.Errorf("expected debug log of the index, got:\n%s", logs.String())
	}
	if strings.Contains(logs.String(), "level=WARN") || strings.Contains(logs.String(), "level=ERROR") {
		t.Errorf("skipping non-packages should only log at debug, got:\n%s", logs.String())
	}
}

func TestIndex_DuplicateNameFirstWins(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "b-copy", `{"name": "shared"}`)
	writePackage(t, root, "a-shared", `{"name": "shared"}`)
	writePackage(t, root, "c-copy", `{"name": "shared"}`)

	l := newTestLocator(t, root)
	for i := 0; i < 10; i++ {
		dir, err := l.Locate(context.Background(), "shared")
		if err != nil {
			t.Fatalf("Locate() error = %v", err)
		}
		if want := filepath.Join(root, "a-shared"); dir != want {
			t.Fatalf("Locate() = %q, want first in directory order %q", dir, want)
		}
	}
}

func TestIndex_Exclude(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "node_modules", `{"name": "hoisted"}`)
	writePackage(t, root, ".cache", `{"name": "cached"}`)
	writePackage(t, root, "legacy-api", `{"name": "legacy"}`)
	writePackage(t, root, "api", `{"name": "api"}`)

	l := newTestLocator(t, root, WithExclude("node_modules", ".*", "legacy-*"))
	idx, err := l.Index(context.Background())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if diff := cmp.Diff([]string{"api"}, idx.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(fsops.NewRealFS(), t.TempDir(), WithExclude("[unclosed"))
	if err == nil {
		t.Error("New() should reject an invalid exclude pattern")
	}
}

func TestIndex_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "a", `{"name": "a"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := newTestLocator(t, root)
	if _, err := l.Index(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Index() error = %v, want context.Canceled", err)
	}
}
