// Package corpus supplies the reference texts essays are scored against.
package corpus

// Reference is one known text in the reference corpus.
type Reference struct {
	ID   string
	Name string
	URL  string
	Text string
}

// Provider supplies the current reference corpus. Implementations must be
// safe for concurrent use; References returns a snapshot that stays valid
// while the underlying corpus reloads.
type Provider interface {
	References() []Reference
}

// Static is a fixed in-memory corpus, mainly for tests and embedding callers.
type Static []Reference

// References returns the corpus unchanged.
func (s Static) References() []Reference {
	return s
}
