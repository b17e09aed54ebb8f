// Package storage retains uploaded source files on the local file system.
package storage

// Provider is the interface for uploaded-file retention.
type Provider interface {
	// Save writes content under a unique name derived from fileName and
	// returns the stored name.
	Save(fileName string, content []byte) (string, error)
	// Read returns the raw bytes of a previously stored file.
	Read(storedName string) ([]byte, error)
	// Delete removes a stored file.
	Delete(storedName string) error
}
