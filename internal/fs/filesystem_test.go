package fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestOSFilesystemManager_ResolveFolder(t *testing.T) {
	m := NewOSFilesystemManager(nil)

	t.Run("existing directory resolves to absolute path", func(t *testing.T) {
		dir := t.TempDir()
		got, err := m.ResolveFolder(dir)
		if err != nil {
			t.Fatalf("ResolveFolder() error = %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("ResolveFolder() = %q, not absolute", got)
		}
	})

	t.Run("missing path fails", func(t *testing.T) {
		if _, err := m.ResolveFolder(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("ResolveFolder() = nil error for missing path")
		}
	})

	t.Run("regular file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, path, []byte("x"))
		if _, err := m.ResolveFolder(path); err == nil {
			t.Error("ResolveFolder() = nil error for regular file")
		}
	})

	t.Run("symlinked directory fails", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "real")
		if err := os.Mkdir(target, 0o755); err != nil {
			t.Fatal(err)
		}
		link := filepath.Join(dir, "link")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		if _, err := m.ResolveFolder(link); err == nil {
			t.Error("ResolveFolder() = nil error for symlink")
		}
	})
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	t.Run("finds regular files recursively in sorted order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.txt"), []byte("bb"))
		writeFile(t, filepath.Join(dir, "a.txt"), []byte("a"))
		writeFile(t, filepath.Join(dir, "sub", "c.txt"), []byte("ccc"))

		m := NewOSFilesystemManager(nil)
		records, err := m.FindFiles(dir)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("found %d files, want 3", len(records))
		}

		wantPaths := []string{
			filepath.Join(dir, "a.txt"),
			filepath.Join(dir, "b.txt"),
			filepath.Join(dir, "sub", "c.txt"),
		}
		wantSizes := []int64{1, 2, 3}
		for i, rec := range records {
			if rec.Path != wantPaths[i] {
				t.Errorf("records[%d].Path = %q, want %q", i, rec.Path, wantPaths[i])
			}
			if rec.Size != wantSizes[i] {
				t.Errorf("records[%d].Size = %d, want %d", i, rec.Size, wantSizes[i])
			}
		}
	})

	t.Run("excludes symlinks", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "real.txt"), []byte("x"))
		if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		m := NewOSFilesystemManager(nil)
		records, err := m.FindFiles(dir)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("found %d files, want 1", len(records))
		}
		if filepath.Base(records[0].Path) != "real.txt" {
			t.Errorf("found %q, want real.txt", records[0].Path)
		}
	})

	t.Run("applies ignore patterns against folder-relative paths", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.txt"), []byte("x"))
		writeFile(t, filepath.Join(dir, "skip.tmp"), []byte("x"))
		writeFile(t, filepath.Join(dir, "sub", "skip.tmp"), []byte("x"))
		writeFile(t, filepath.Join(dir, "build", "output"), []byte("x"))

		m := NewOSFilesystemManager([]string{"*.tmp", "build/output"})
		records, err := m.FindFiles(dir)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("found %d files, want 1: %v", len(records), records)
		}
		if filepath.Base(records[0].Path) != "keep.txt" {
			t.Errorf("found %q, want keep.txt", records[0].Path)
		}
	})

	t.Run("missing folder fails", func(t *testing.T) {
		m := NewOSFilesystemManager(nil)
		if _, err := m.FindFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("FindFiles() = nil error for missing folder")
		}
	})
}

func TestOSFilesystemManager_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	writeFile(t, path, []byte("content"))

	m := NewOSFilesystemManager(nil)
	r, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("read %q, want %q", data, "content")
	}
}
