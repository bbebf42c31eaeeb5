package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps publication records in a single JSON file keyed by
// fingerprint. The file is human-inspectable and rewritten in full on each
// commit via a temp file and atomic rename.
type FileStore struct {
	path    string
	records map[string]Record
}

var _ Store = (*FileStore)(nil)

// OpenFile loads the store at path, creating the parent directory if
// needed. A missing file is an empty store; an unreadable file is an error.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &FileStore{path: path, records: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", path, err)
	}
	return s, nil
}

// Has reports whether a publication record exists for the fingerprint.
func (s *FileStore) Has(fingerprint string) bool {
	_, ok := s.records[fingerprint]
	return ok
}

// Record upserts one entry and rewrites the whole file atomically. On any
// error the in-memory and on-disk state both keep their previous contents.
func (s *FileStore) Record(fingerprint string, rec Record) error {
	updated := make(map[string]Record, len(s.records)+1)
	for k, v := range s.records {
		updated[k] = v
	}
	updated[fingerprint] = rec

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".posted_articles-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store: %w", err)
	}

	s.records = updated
	return nil
}

// LoadAll returns a copy of every stored record keyed by fingerprint.
func (s *FileStore) LoadAll() map[string]Record {
	out := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Close is a no-op for the file store; every commit is already durable.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the store file path.
func (s *FileStore) Path() string {
	return s.path
}
