// Package packager packs a package directory into a tarball by running an
// external package manager.
package packager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand is the package manager invoked when none is configured.
const DefaultCommand = "pnpm"

// ErrPackaging indicates the packaging subprocess failed.
var ErrPackaging = errors.New("packaging failed")

// Packager packs a source directory into an archive placed in a destination directory.
type Packager interface {
	// Pack returns the file name of the archive it produced.
	Pack(ctx context.Context, sourceDir, destDir string) (string, error)
}

// Error describes a failed packaging subprocess.
type Error struct {
	Command  string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s in %s: %v", e.Command, e.Dir, e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

// Is reports ErrPackaging as a match so callers can test with errors.Is.
func (e *Error) Is(target error) bool {
	return target == ErrPackaging
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CommandPackager runs "<Command> pack --pack-destination <dest>" in the source directory.
type CommandPackager struct {
	Command string
}

// NewCommandPackager creates a CommandPackager for command, defaulting to pnpm.
func NewCommandPackager(command string) *CommandPackager {
	if command == "" {
		command = DefaultCommand
	}
	return &CommandPackager{Command: command}
}

// Pack runs the package manager and returns the basename of the archive it reports.
func (p *CommandPackager) Pack(ctx context.Context, sourceDir, destDir string) (string, error) {
	args := []string{"pack", "--pack-destination", destDir}
	cmd := exec.CommandContext(ctx, p.Command, args...)
	cmd.Dir = sourceDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	commandLine := p.Command + " " + strings.Join(args, " ")
	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &Error{
			Command:  commandLine,
			Dir:      sourceDir,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	name, err := ArtifactName(stdout.String())
	if err != nil {
		return "", &Error{
			Command: commandLine,
			Dir:     sourceDir,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return name, nil
}

// ArtifactName extracts the archive file name from package manager output:
// the last path segment of the last non-empty line. Both / and \ separate segments.
func ArtifactName(stdout string) (string, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return "", errors.New("no archive path in output")
	}

	if i := strings.LastIndexAny(last, `/\`); i >= 0 {
		last = last[i+1:]
	}
	if last == "" {
		return "", errors.New("archive path in output has no file name")
	}
	return last, nil
}
