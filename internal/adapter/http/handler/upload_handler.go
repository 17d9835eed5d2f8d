package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/usecase"
)

const htmlContentType = "text/html; charset=utf-8"

// UploadHandler serves the upload page and binds browser selections to the
// upload classifier. The page's result element is the shared MemoryOutput.
type UploadHandler struct {
	uploadUC       usecase.UploadClassifier
	output         *display.MemoryOutput
	extensions     []string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadUC usecase.UploadClassifier, output *display.MemoryOutput, extensions []string, maxUploadBytes int64, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{
		uploadUC:       uploadUC,
		output:         output,
		extensions:     extensions,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Index handles GET /
func (h *UploadHandler) Index(c *gin.Context) {
	accept := make([]string, 0, len(h.extensions))
	for _, ext := range h.extensions {
		accept = append(accept, "."+strings.TrimPrefix(ext, "."))
	}

	c.HTML(http.StatusOK, IndexTemplateName, gin.H{
		"Title":        "Rice Grain Classifier",
		"Accept":       strings.Join(accept, ","),
		"UploadPath":   "/upload",
		"GenericError": display.GenericErrorMessage,
		// Content is produced by HTMLFormatter and already escaped.
		"Result": template.HTML(h.output.Content()),
	})
}

// Upload handles POST /upload. An empty selection answers 204 and leaves
// the result element untouched.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := ReadSelectedFile(c, h.maxUploadBytes)
	if errors.Is(err, ErrMissingFile) || errors.Is(err, ErrNoSelectedFile) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		errResp := MapUploadError(err)
		c.String(errResp.StatusCode, errResp.Message)
		return
	}

	// The selection outlives the request; only a newer selection cancels it.
	pending := h.uploadUC.Select(context.WithoutCancel(c.Request.Context()), entity.NewSelection(file))
	if pending == nil {
		c.String(http.StatusServiceUnavailable, display.GenericErrorMessage)
		return
	}

	result, err := pending.Wait(c.Request.Context())
	if err != nil {
		h.logger.Debug("Client left before classification finished", zap.Error(err))
		return
	}
	if result.Kind == entity.ResultSuperseded {
		h.logger.Debug("Upload superseded by a newer selection",
			zap.String("selection_id", pending.SelectionID.String()))
	}

	c.Data(http.StatusOK, htmlContentType, []byte(h.output.Content()))
}

// Result handles GET /result
func (h *UploadHandler) Result(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, []byte(h.output.Content()))
}

// Classify handles POST /api/v1/classify. It runs the request synchronously
// and does not touch the page's result element.
func (h *UploadHandler) Classify(c *gin.Context) {
	file, err := ReadSelectedFile(c, h.maxUploadBytes)
	if err != nil {
		HandleUploadError(c, err)
		return
	}

	respondResult(c, h.uploadUC.Classify(c.Request.Context(), file))
}
