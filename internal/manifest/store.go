package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/wspack/internal/fsops"
)

// Store manages the canonical and backup manifest files of one package directory.
type Store struct {
	fs  fsops.FS
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(fs fsops.FS, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the canonical manifest path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// BackupPath returns the backup manifest path.
func (s *Store) BackupPath() string {
	return filepath.Join(s.dir, BackupFileName)
}

// Read reads and parses the canonical manifest.
func (s *Store) Read() (*Manifest, error) {
	return Read(s.fs, s.Path())
}

// Write serializes m over the canonical manifest.
func (s *Store) Write(m *Manifest) error {
	return Write(s.fs, s.Path(), m)
}

// BackupExists reports whether a backup manifest is present.
func (s *Store) BackupExists() (bool, error) {
	exists, err := s.fs.Exists(s.BackupPath())
	if err != nil {
		return false, fmt.Errorf("failed to check for %s: %w", BackupFileName, err)
	}
	return exists, nil
}

// Preserve renames the canonical manifest to the backup name.
func (s *Store) Preserve() error {
	if err := s.fs.Rename(s.Path(), s.BackupPath()); err != nil {
		return fmt.Errorf("failed to preserve %s: %w", FileName, err)
	}
	return nil
}

// Restore deletes the canonical manifest and renames the backup back into place.
// A canonical manifest that is already gone is not an error.
func (s *Store) Restore() error {
	if err := s.fs.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove rewritten %s: %w", FileName, err)
	}
	if err := s.fs.Rename(s.BackupPath(), s.Path()); err != nil {
		return fmt.Errorf("failed to restore %s: %w", BackupFileName, err)
	}
	return nil
}

// Read reads and parses the manifest at path.
func Read(fs fsops.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write serializes m to path.
func Write(fs fsops.FS, path string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
