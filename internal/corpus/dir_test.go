package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRef(t *testing.T, dir, name, text string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewDir_LoadsSortedReferences(t *testing.T) {
	dir := t.TempDir()
	writeRef(t, dir, "b.txt", "second text")
	writeRef(t, dir, "a.txt", "first text")
	writeRef(t, dir, "notes.md", "ignored, not a txt file")

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	refs := d.References()
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2", len(refs))
	}
	if refs[0].ID != "a.txt" || refs[1].ID != "b.txt" {
		t.Errorf("refs not sorted: %s, %s", refs[0].ID, refs[1].ID)
	}
	if refs[0].Name != "a" || refs[0].Text != "first text" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestNewDir_RecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeRef(t, dir, filepath.Join("papers", "deep.txt"), "nested reference")

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	refs := d.References()
	if len(refs) != 1 {
		t.Fatalf("refs = %d, want 1", len(refs))
	}
	if refs[0].ID != filepath.Join("papers", "deep.txt") || refs[0].Name != "deep" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestNewDir_MissingRoot(t *testing.T) {
	if _, err := NewDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestReload_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeRef(t, dir, "a.txt", "first")

	d, err := NewDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 {
		t.Fatalf("initial len = %d", d.Len())
	}

	writeRef(t, dir, "b.txt", "second")
	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("len after reload = %d, want 2", d.Len())
	}
}

func TestReload_SnapshotIsStable(t *testing.T) {
	dir := t.TempDir()
	writeRef(t, dir, "a.txt", "first")

	d, err := NewDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	before := d.References()

	writeRef(t, dir, "b.txt", "second")
	if err := d.Reload(); err != nil {
		t.Fatal(err)
	}
	// The snapshot handed out before the reload is unchanged.
	if len(before) != 1 {
		t.Errorf("old snapshot mutated: %d refs", len(before))
	}
}

func TestStaticProvider(t *testing.T) {
	s := Static{{ID: "x", Text: "hello"}}
	refs := s.References()
	if len(refs) != 1 || refs[0].ID != "x" {
		t.Errorf("refs = %+v", refs)
	}
}
