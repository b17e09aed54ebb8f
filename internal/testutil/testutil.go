// Package testutil provides shared test helpers for setting up databases,
// upload directories, and reference corpora.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/veritext/veritext/internal/corpus"
	"github.com/veritext/veritext/internal/storage"
	"github.com/veritext/veritext/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "veritext-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUploads creates a temporary uploads directory with a storage.Provider.
func TestUploads(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, files
}

// TestCorpus creates a directory-backed corpus populated with the given
// reference texts, keyed by file name (without extension).
func TestCorpus(t *testing.T, refs map[string]string) *corpus.Dir {
	t.Helper()
	dir := t.TempDir()
	for name, text := range refs {
		if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	d, err := corpus.NewDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
