package helpers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"eventify/internal/domain"
)

// MaxUploadBytes bounds multipart request bodies.
const MaxUploadBytes = 10 << 20

// ParseForm parses a urlencoded or multipart body into r.Form.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// FormValue returns the trimmed value of the first present key.
func FormValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			return v
		}
	}
	return ""
}

// FormBool reports whether key is a checked checkbox: "1", "true" or "on".
func FormBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "1", "true", "on":
		return true
	}
	return false
}

// FormFile returns the uploaded file under key, or nil when none was sent.
// The caller closes the returned closer once the upload has been consumed.
func FormFile(r *http.Request, key string) (*domain.ImageUpload, func() error, error) {
	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() error { return nil }, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", key, err)
	}
	if header.Filename == "" {
		_ = file.Close()
		return nil, func() error { return nil }, nil
	}
	return &domain.ImageUpload{Filename: header.Filename, Content: file}, file.Close, nil
}
