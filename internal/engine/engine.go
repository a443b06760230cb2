// Package engine provides the build and clean procedures of wspack.
//
// The engine package is the orchestration layer between CLI commands and the
// lower-level manifest, locator and packager packages. Procedures return
// errors instead of exiting so they can be driven from tests.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Build: packs workspace dependencies and rewrites package.json
//   - Clean: removes archives and restores the original package.json
//   - Status: reports whether a build is currently applied
package engine

import (
	"log/slog"
	"path/filepath"

	"github.com/danieljhkim/wspack/internal/fsops"
	"github.com/danieljhkim/wspack/internal/hash"
	"github.com/danieljhkim/wspack/internal/packager"
)

// Reporter receives user-facing progress messages. Implementations must be
// safe for concurrent use; packing reports from several goroutines.
type Reporter interface {
	Step(msg string)
	Warn(msg string)
}

// NopReporter discards all progress messages.
type NopReporter struct{}

func (NopReporter) Step(string) {}
func (NopReporter) Warn(string) {}

// Engine orchestrates all wspack operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	packager packager.Packager
	hasher   hash.Hasher
	reporter Reporter
	logger   *slog.Logger
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	pk packager.Packager,
	hasher hash.Hasher,
	reporter Reporter,
	logger *slog.Logger,
) *Engine {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fs:       fs,
		packager: pk,
		hasher:   hasher,
		reporter: reporter,
		logger:   logger,
	}
}

// resolvePath interprets path relative to cwd unless it is absolute.
func resolvePath(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
