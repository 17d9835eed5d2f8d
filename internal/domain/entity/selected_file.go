package entity

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptySelection is returned when a selection event carries no file
var ErrEmptySelection = errors.New("no file selected")

// DefaultImageExtensions are the file extensions the classification service accepts
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "gif"}

// SelectedFile is the first file of a selection event. It is only held for
// the duration of one request.
type SelectedFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// NewSelectedFile creates a SelectedFile. An empty content type is detected
// from the file extension, then from the content itself.
func NewSelectedFile(name, contentType string, content []byte) *SelectedFile {
	if contentType == "" {
		contentType = DetectContentType(name, content)
	}
	return &SelectedFile{
		Name:        name,
		ContentType: contentType,
		Content:     content,
	}
}

// ReadSelectedFile loads a file from disk as a selection
func ReadSelectedFile(path string) (*SelectedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selected file: %w", err)
	}
	return NewSelectedFile(filepath.Base(path), "", content), nil
}

// Size returns the content length in bytes
func (f *SelectedFile) Size() int {
	return len(f.Content)
}

// DetectContentType guesses the MIME type of a file
func DetectContentType(name string, content []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return http.DetectContentType(content)
}

// IsAllowedImage reports whether name carries one of the allowed extensions.
// The comparison is case-insensitive and a leading dot in exts is ignored.
func IsAllowedImage(name string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range exts {
		if strings.EqualFold(ext, strings.TrimPrefix(allowed, ".")) {
			return true
		}
	}
	return false
}

// Selection is one user selection event
type Selection struct {
	ID    uuid.UUID
	Files []*SelectedFile
}

// NewSelection creates a Selection with a fresh ID
func NewSelection(files ...*SelectedFile) *Selection {
	return &Selection{
		ID:    uuid.New(),
		Files: files,
	}
}

// First returns the file the classifier acts on, or ErrEmptySelection
func (s *Selection) First() (*SelectedFile, error) {
	if s == nil {
		return nil, ErrEmptySelection
	}
	for _, f := range s.Files {
		if f != nil {
			return f, nil
		}
	}
	return nil, ErrEmptySelection
}
