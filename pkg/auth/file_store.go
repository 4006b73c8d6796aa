package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists credentials as a plain JSON file. This is the
// authoritative store and matches the historical on-disk format: the five
// fields are written verbatim, without encryption or validation of content.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed credential store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the credentials file. A parse failure is a fatal
// configuration error.
func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", s.path, err)
	}
	return &creds, nil
}

// Save writes the credentials file wholesale, creating parent directories
// as needed. Mode 0600: the file holds a password in the clear.
func (s *FileStore) Save(creds *Credentials) error {
	if creds == nil {
		return ErrInvalidCredentials
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Delete removes the credentials file.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}
	return nil
}

// Exists reports whether the credentials file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
