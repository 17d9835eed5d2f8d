package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RiceTypes are the labels the rice classification model predicts, by class index
var RiceTypes = []string{"Arborio", "Basmati", "Ipsala", "Jasmine", "Karacadag"}

// UnknownLabel is what the model answers for an unmapped class index
const UnknownLabel = "Unknown"

// StubHandler answers the classification wire contract with a fixed label.
// It validates uploads like the real service and runs no model.
type StubHandler struct {
	label          string
	extensions     []string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewStubHandler creates a stub handler. The label must be a known rice type
// or UnknownLabel.
func NewStubHandler(label string, extensions []string, maxUploadBytes int64, logger *zap.Logger) (*StubHandler, error) {
	if !isKnownLabel(label) {
		return nil, fmt.Errorf("unknown rice type %q", label)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubHandler{
		label:          label,
		extensions:     extensions,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}, nil
}

// Predict handles POST /predict
func (h *StubHandler) Predict(c *gin.Context) {
	file, err := ReadSelectedFile(c, h.maxUploadBytes)
	if err == nil {
		err = ValidateImageName(file.Name, h.extensions)
	}
	if err != nil {
		errResp := MapUploadError(err)
		h.logger.Info("Rejected upload", zap.String("reason", errResp.Message))
		c.JSON(errResp.StatusCode, gin.H{"error": errResp.Message})
		return
	}

	h.logger.Info("Received file",
		zap.String("file", file.Name),
		zap.String("content_type", file.ContentType),
		zap.Int("bytes", file.Size()),
	)
	c.JSON(http.StatusOK, gin.H{"predicted_class": h.label})
}

func isKnownLabel(label string) bool {
	if label == UnknownLabel {
		return true
	}
	for _, t := range RiceTypes {
		if t == label {
			return true
		}
	}
	return false
}
