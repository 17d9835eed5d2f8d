package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUploadError maps upload errors to HTTP error responses.
// Messages match what the classification service itself answers.
func MapUploadError(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrMissingFile):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "No file part",
		}
	case errors.Is(err, ErrNoSelectedFile):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "No selected file",
		}
	case errors.Is(err, ErrUnsupportedFile):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "Invalid file type",
		}
	case errors.Is(err, ErrFileTooLarge):
		return ErrorResponse{
			StatusCode: http.StatusRequestEntityTooLarge,
			Code:       "PAYLOAD_TOO_LARGE",
			Message:    "file too large",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleUploadError sends the JSON envelope for an upload error
func HandleUploadError(c *gin.Context, err error) {
	errResp := MapUploadError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}
