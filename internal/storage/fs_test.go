package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFS_SaveAndRead(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	stored, err := fs.Save("essay.txt", []byte("The cat sat on the mat."))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(stored, "_essay.txt") {
		t.Errorf("stored name = %q, want timestamp prefix on original name", stored)
	}

	data, err := fs.Read(stored)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "The cat sat on the mat." {
		t.Errorf("content = %q", data)
	}
}

func TestFS_SaveStripsDirectories(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}

	stored, err := fs.Save(filepath.Join("sub", "essay.txt"), []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.ContainsRune(stored, os.PathSeparator) {
		t.Errorf("stored name contains separator: %q", stored)
	}
}

func TestFS_ReadRejectsTraversal(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../escape.txt", "a/../../b", "", "sub/file.txt"} {
		if _, err := fs.Read(name); err == nil {
			t.Errorf("Read(%q) should fail", name)
		}
	}
}

func TestFS_Delete(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stored, err := fs.Save("essay.txt", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(stored); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Read(stored); err == nil {
		t.Error("file still readable after delete")
	}
}

func TestFS_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	if _, err := NewFS(root); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}
