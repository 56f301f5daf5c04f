// Package storage keeps rendered invoice documents on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is where artifacts land when no directory is configured.
const DefaultDir = "storage/invoices"

// ArtifactStore maps invoice numbers to files under a single directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates dir if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) Dir() string {
	return s.dir
}

// FileName returns the sanitized file name for an invoice, e.g. INV_10001.xlsx.
func FileName(invoiceNumber, format string) string {
	return Sanitize(invoiceNumber) + "." + format
}

// Sanitize replaces every character outside [A-Za-z0-9] with an underscore.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PathFor returns where the artifact of invoiceNumber lives.
func (s *ArtifactStore) PathFor(invoiceNumber, format string) string {
	return filepath.Join(s.dir, FileName(invoiceNumber, format))
}

// Exists reports whether a regular file is present at path.
func (s *ArtifactStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteAtomic writes through a temp file in the target directory and renames it
// into place, so readers never see a partial document and a failed write keeps
// the previous one.
func WriteAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Remove deletes the artifact. A missing file is not an error.
func (s *ArtifactStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
