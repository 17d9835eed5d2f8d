package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// FileField is the form field browsers upload the image under
const FileField = "file"

// DefaultMaxUploadBytes bounds multipart bodies when nothing else is configured
const DefaultMaxUploadBytes int64 = 10 << 20

// Upload errors
var (
	ErrMissingFile     = errors.New("no file part")
	ErrNoSelectedFile  = errors.New("no selected file")
	ErrUnsupportedFile = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// ReadSelectedFile extracts the uploaded file from a multipart request.
// The content type is taken from the part header as the browser sent it.
func ReadSelectedFile(c *gin.Context, maxBytes int64) (*entity.SelectedFile, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	header, err := c.FormFile(FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrFileTooLarge
		}
		// Parts with an empty filename are parsed as plain values.
		if form := c.Request.MultipartForm; form != nil && len(form.Value[FileField]) > 0 {
			return nil, ErrNoSelectedFile
		}
		return nil, ErrMissingFile
	}
	if header.Filename == "" {
		return nil, ErrNoSelectedFile
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return entity.NewSelectedFile(header.Filename, header.Header.Get("Content-Type"), content), nil
}

// ValidateImageName rejects file names outside the allowed extensions
func ValidateImageName(name string, exts []string) error {
	if !entity.IsAllowedImage(name, exts) {
		return ErrUnsupportedFile
	}
	return nil
}
