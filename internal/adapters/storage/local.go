package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"eventify/internal/domain"
)

// ImagesSubdir is the folder under the upload dir that holds event images.
const ImagesSubdir = "images"

var allowedImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// LocalImageStore saves uploaded images on the local filesystem.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates <uploadDir>/images if needed.
func NewLocalImageStore(uploadDir string) (*LocalImageStore, error) {
	dir := filepath.Join(uploadDir, ImagesSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalImageStore{dir: dir}, nil
}

// Dir returns the directory images are written to.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

// Allowed reports whether filename has a png, jpg, jpeg or gif extension (any case).
func (s *LocalImageStore) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedImageExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// StoredName returns the name Save writes filename under, or "" if filename
// sanitizes to nothing.
func (s *LocalImageStore) StoredName(filename string) string {
	return SecureFilename(filename)
}

// Save writes the upload under its sanitized name, replacing any file of the same name.
func (s *LocalImageStore) Save(ctx context.Context, upload *domain.ImageUpload) (string, error) {
	name := s.StoredName(upload.Filename)
	if name == "" || !s.Allowed(name) {
		return "", fmt.Errorf("%w: unusable image filename %q", domain.ErrValidation, upload.Filename)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, upload.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return name, nil
}

// SecureFilename reduces a client supplied filename to a flat ASCII name that
// is safe to join to a directory: separators become underscores, other unsafe
// characters are dropped, and leading/trailing dots or underscores are trimmed.
func SecureFilename(filename string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(filename) {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}
	name := strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
