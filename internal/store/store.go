// Package store persists uploaded source files and the current generation
// artifact on disk.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	uploadsDir   = "uploads"
	artifactName = "generation.json"
)

// Store is a directory-backed persistence layer. Uploads accumulate under
// uploads/; the generation artifact is a single overwrite target, so the
// store always describes at most one active generation.
type Store struct {
	root string
}

// Open creates the layout under root if needed and returns the store.
func Open(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root must not be empty")
	}
	if err := os.MkdirAll(filepath.Join(root, uploadsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store layout: %w", err)
	}
	return &Store{root: root}, nil
}

// SaveUpload writes one received source file and returns its path. The
// stored name is timestamped so consecutive uploads never collide.
func (s *Store) SaveUpload(name string, source []byte) (string, error) {
	base := sanitizeName(name)
	stamp := time.Now().UTC().Format("20060102T150405.000000000")
	path := filepath.Join(s.root, uploadsDir, stamp+"_"+base)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// WriteArtifact atomically replaces the generation artifact.
func (s *Store) WriteArtifact(artifact []byte) error {
	final := filepath.Join(s.root, artifactName)
	tmp, err := os.CreateTemp(s.root, artifactName+".tmp-*")
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(artifact); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ReadArtifact returns the current generation artifact, or os.ErrNotExist
// when nothing has been activated yet.
func (s *Store) ReadArtifact() ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, artifactName))
}

// ArtifactPath is the on-disk location of the generation artifact.
func (s *Store) ArtifactPath() string {
	return filepath.Join(s.root, artifactName)
}

// sanitizeName strips path components and anything that could escape the
// uploads directory.
func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "upload.py"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
