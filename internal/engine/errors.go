package engine

import "errors"

var (
	// ErrBackupExists indicates a build is already applied in the directory.
	ErrBackupExists = errors.New("original package.json found")

	// ErrDependencyNotFound indicates a workspace dependency has no package folder.
	ErrDependencyNotFound = errors.New("dependency not found")
)
