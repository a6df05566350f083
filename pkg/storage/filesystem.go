package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RefPrefix is the public prefix embedded in stored document references.
const RefPrefix = "/uploads/"

// LocalStorage persists uploaded applicant documents on disk under a base
// directory and hands back opaque reference strings. The engine never
// inspects file contents, only presence of the reference.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies the reader into a uniquely named file and returns the
// document reference for it.
func (s *LocalStorage) SaveStream(originalName string, r io.Reader) (string, error) {
	filename := uniqueName(originalName)
	path := filepath.Join(s.baseDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return RefPrefix + filename, nil
}

// Open returns a read-only handle for the referenced document.
func (s *LocalStorage) Open(ref string) (*os.File, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a referenced document if present.
func (s *LocalStorage) Delete(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(ref string) (string, error) {
	name := strings.TrimPrefix(ref, RefPrefix)
	cleaned := filepath.Clean(name)
	if cleaned != name || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid document reference %q", ref)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func uniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	if base == "" {
		base = "document"
	}

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixNano(), hex.EncodeToString(suffix), ext)
}
