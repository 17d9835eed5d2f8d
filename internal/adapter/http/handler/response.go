package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/domain/entity"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// ClassificationOutput is the data of a successful classification
type ClassificationOutput struct {
	PredictedClass string `json:"predicted_class"`
	Message        string `json:"message"`
}

func newMeta(c *gin.Context) *MetaInfo {
	requestID := c.GetString(RequestIDKey)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &MetaInfo{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Meta:    newMeta(c),
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
		Meta: newMeta(c),
	})
}

// respondResult sends a classification result. Transport detail never
// reaches the client; it has already been logged.
func respondResult(c *gin.Context, result entity.Result) {
	switch result.Kind {
	case entity.ResultSuccess:
		respondSuccess(c, http.StatusOK, ClassificationOutput{
			PredictedClass: result.Label,
			Message:        display.Message(result),
		})
	case entity.ResultApplicationError:
		respondError(c, http.StatusUnprocessableEntity, "CLASSIFICATION_ERROR", result.Message)
	case entity.ResultNoPrediction:
		respondError(c, http.StatusBadGateway, "NO_PREDICTION", display.NoPredictionMessage)
	case entity.ResultSuperseded:
		respondError(c, http.StatusConflict, "SUPERSEDED", "superseded by a newer selection")
	default:
		respondError(c, http.StatusBadGateway, "UPSTREAM_ERROR", display.GenericErrorMessage)
	}
}
