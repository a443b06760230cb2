package fsops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRealFS_Exists(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "package.json")
		if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		exists, err := fs.Exists(testFile)
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if !exists {
			t.Error("Exists should return true for existing file")
		}
	})

	t.Run("non-existing file", func(t *testing.T) {
		exists, err := fs.Exists(filepath.Join(tmpDir, "package_original.json"))
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if exists {
			t.Error("Exists should return false for non-existing file")
		}
	})

	t.Run("existing directory", func(t *testing.T) {
		exists, err := fs.Exists(tmpDir)
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if !exists {
			t.Error("Exists should return true for existing directory")
		}
	})
}

func TestRealFS_Rename(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "package.json")
	dst := filepath.Join(tmpDir, "package_original.json")
	content := []byte(`{"name": "app"}`)
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if err := fs.Rename(src, dst); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should no longer exist after rename")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read renamed file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("renamed content = %q, want %q", got, content)
	}
}

func TestRealFS_MkdirAll(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("create nested directories", func(t *testing.T) {
		nestedPath := filepath.Join(tmpDir, "a", "b", "c")
		if err := fs.MkdirAll(nestedPath, 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
			t.Error("Nested directory was not created")
		}
	})

	t.Run("idempotent operation", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "local_modules")
		if err := fs.MkdirAll(dirPath, 0755); err != nil {
			t.Fatalf("First MkdirAll failed: %v", err)
		}
		if err := fs.MkdirAll(dirPath, 0755); err != nil {
			t.Errorf("Second MkdirAll should not fail: %v", err)
		}
	})
}

func TestRealFS_RemoveAll(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("remove populated directory", func(t *testing.T) {
		dir := filepath.Join(tmpDir, "local_modules")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "a-1.0.0.tgz"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		if err := fs.RemoveAll(dir); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("directory should have been removed")
		}
	})

	t.Run("missing path is not an error", func(t *testing.T) {
		if err := fs.RemoveAll(filepath.Join(tmpDir, "missing")); err != nil {
			t.Errorf("RemoveAll on missing path returned error: %v", err)
		}
	})
}

func TestRealFS_ReadDir(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, name), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}

	entries, err := fs.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if len(entries) != len(want) {
		t.Fatalf("ReadDir returned %d entries, want %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Name() != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, entry.Name(), want[i])
		}
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("write to new file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "atomic-new.json")
		content := []byte("{}\n")

		if err := fs.AtomicWrite(testFile, content, 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		readContent, err := os.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if string(readContent) != string(content) {
			t.Errorf("File content mismatch: got %q, want %q", readContent, content)
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "atomic-overwrite.json")
		if err := os.WriteFile(testFile, []byte("initial"), 0644); err != nil {
			t.Fatalf("failed to create initial file: %v", err)
		}

		newContent := []byte("overwritten")
		if err := fs.AtomicWrite(testFile, newContent, 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		readContent, err := os.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(readContent) != string(newContent) {
			t.Errorf("File content not updated: got %q, want %q", readContent, newContent)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		dir := filepath.Join(tmpDir, "clean")
		if err := fs.AtomicWrite(filepath.Join(dir, "package.json"), []byte("{}"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the target file, found %d entries", len(entries))
		}
	})
}

func TestRealFS_Remove(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "remove-me.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if err := fs.Remove(testFile); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(testFile); !os.IsNotExist(err) {
		t.Error("File should have been removed")
	}
}
