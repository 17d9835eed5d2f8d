package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/domain/entity"
)

func TestRespondResult(t *testing.T) {
	tests := []struct {
		name            string
		result          entity.Result
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:           "success",
			result:         entity.Ok("Basmati"),
			expectedStatus: http.StatusOK,
		},
		{
			name:            "application error carries server message",
			result:          entity.Fail(entity.ResultApplicationError, "Invalid file type", nil),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedCode:    "CLASSIFICATION_ERROR",
			expectedMessage: "Invalid file type",
		},
		{
			name:            "transport error hides detail",
			result:          entity.Fail(entity.ResultTransportError, "", errors.New("dial tcp: connection refused")),
			expectedStatus:  http.StatusBadGateway,
			expectedCode:    "UPSTREAM_ERROR",
			expectedMessage: display.GenericErrorMessage,
		},
		{
			name:            "no prediction",
			result:          entity.Fail(entity.ResultNoPrediction, "", nil),
			expectedStatus:  http.StatusBadGateway,
			expectedCode:    "NO_PREDICTION",
			expectedMessage: display.NoPredictionMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/test", func(c *gin.Context) {
				c.Set(RequestIDKey, "test-request-id")
				respondResult(c, tt.result)
			})

			req, _ := http.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")

			var response Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "test-request-id", response.Meta.RequestID)

			if tt.expectedCode == "" {
				assert.True(t, response.Success)
				data := response.Data.(map[string]interface{})
				assert.Equal(t, "Basmati", data["predicted_class"])
				assert.Equal(t, "Predicted Rice Type: Basmati", data["message"])
				return
			}
			assert.False(t, response.Success)
			assert.Equal(t, tt.expectedCode, response.Error.Code)
			assert.Equal(t, tt.expectedMessage, response.Error.Message)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Run("uses existing request ID", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			c.Set(RequestIDKey, "existing-id")
			c.JSON(http.StatusOK, newMeta(c))
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var meta MetaInfo
		err := json.Unmarshal(w.Body.Bytes(), &meta)
		assert.NoError(t, err)
		assert.Equal(t, "existing-id", meta.RequestID)
		assert.NotEmpty(t, meta.Timestamp)
	})

	t.Run("generates new request ID when not set", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "resource not found")
		})

		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response Response
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.NotEmpty(t, response.Meta.RequestID)
		assert.Nil(t, response.Data)
	})
}
