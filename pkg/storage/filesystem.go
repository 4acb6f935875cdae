package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadStore persists uploaded content files on disk under a base directory
// and maps them to public URLs under a fixed prefix.
type UploadStore struct {
	baseDir   string
	urlPrefix string
}

// NewUploadStore ensures the uploads directory exists and returns a handle.
func NewUploadStore(baseDir, urlPrefix string) (*UploadStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &UploadStore{baseDir: baseDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// SaveStream copies from reader into a new file named after the upload time
// plus the sanitised original filename, and returns the stored filename.
func (s *UploadStore) SaveStream(original string, r io.Reader) (string, error) {
	filename := s.GenerateFilename(original)
	target := filepath.Join(s.baseDir, filename)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *UploadStore) Open(filename string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.Base(filename)))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *UploadStore) Delete(filename string) error {
	target := filepath.Join(s.baseDir, filepath.Base(filename))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Exists reports whether the stored file is present on disk.
func (s *UploadStore) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, filepath.Base(filename)))
	return err == nil
}

// URL maps a stored filename to its public path.
func (s *UploadStore) URL(filename string) string {
	return s.urlPrefix + "/" + filepath.Base(filename)
}

// FilenameFromURL extracts the stored filename from a public URL.
func (s *UploadStore) FilenameFromURL(fileURL string) string {
	return path.Base(fileURL)
}

// Dir exposes the base directory (used to mount static serving).
func (s *UploadStore) Dir() string {
	return s.baseDir
}

// GenerateFilename builds a unix-millis-prefixed name for an upload.
func (s *UploadStore) GenerateFilename(original string) string {
	name := unsafeChars.ReplaceAllString(filepath.Base(original), "_")
	if name == "" || name == "." {
		name = "file"
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)
}
