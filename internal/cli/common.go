package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danieljhkim/wspack/internal/engine"
	"github.com/danieljhkim/wspack/internal/fsops"
	"github.com/danieljhkim/wspack/internal/hash"
	"github.com/danieljhkim/wspack/internal/packager"
)

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(packagerCommand string, reporter engine.Reporter) *engine.Engine {
	return engine.New(
		fsops.NewRealFS(),
		packager.NewCommandPackager(packagerCommand),
		hash.NewSHA256Hasher(),
		reporter,
		slog.Default(),
	)
}

// reporterFor returns the progress reporter for a command. JSON output stays
// machine-readable, so progress is discarded.
func reporterFor(g *globalFlags, p *printer) engine.Reporter {
	if g.json {
		return engine.NopReporter{}
	}
	return p
}

// workingDir returns the directory wspack operates on.
func workingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// outputJSON writes a value as JSON to w.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
