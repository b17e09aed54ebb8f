package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Dir loads reference texts from plain-text files under a directory. Reload
// swaps the snapshot atomically, so in-flight plagiarism checks keep scoring
// against the corpus they started with.
type Dir struct {
	root string

	mu   sync.RWMutex
	refs []Reference
}

// NewDir creates a directory-backed corpus provider and performs the initial
// load. The directory must already exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("corpus: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("corpus: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: root is not a directory: %s", abs)
	}
	d := &Dir{root: abs}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// References returns the current corpus snapshot.
func (d *Dir) References() []Reference {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refs
}

// Len returns the number of loaded references.
func (d *Dir) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.refs)
}

// Reload re-reads every .txt file under the corpus root and replaces the
// snapshot. Files are ordered by relative path for deterministic source ids.
func (d *Dir) Reload() error {
	var refs []Reference
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(d.root, p)
		refs = append(refs, Reference{
			ID:   rel,
			Name: strings.TrimSuffix(filepath.Base(rel), ".txt"),
			Text: string(data),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("corpus: reload: %w", err)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	d.mu.Lock()
	d.refs = refs
	d.mu.Unlock()
	return nil
}
