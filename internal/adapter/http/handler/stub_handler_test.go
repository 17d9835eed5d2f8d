package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStubRouter(t *testing.T, label string) *gin.Engine {
	t.Helper()

	h, err := NewStubHandler(label, []string{"jpg", "jpeg", "png", "gif"}, 1<<20, nil)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/predict", h.Predict)
	return r
}

func TestNewStubHandler(t *testing.T) {
	for _, label := range append(RiceTypes, UnknownLabel) {
		_, err := NewStubHandler(label, nil, 0, nil)
		assert.NoError(t, err, label)
	}

	_, err := NewStubHandler("Wild", nil, 0, nil)
	assert.Error(t, err)
}

func TestStubHandler_Predict(t *testing.T) {
	tests := []struct {
		name           string
		req            func(t *testing.T) *http.Request
		expectedStatus int
		expectedBody   map[string]string
	}{
		{
			name: "valid image",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/predict", "file", "grain.jpg", "image/jpeg", []byte("x"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]string{"predicted_class": "Jasmine"},
		},
		{
			name: "no file part",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/predict", "image", "grain.jpg", "image/jpeg", []byte("x"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]string{"error": "No file part"},
		},
		{
			name: "no selected file",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/predict", "file", "", "", nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]string{"error": "No selected file"},
		},
		{
			name: "invalid file type",
			req: func(t *testing.T) *http.Request {
				return newUploadRequest(t, "/predict", "file", "grain.tiff", "image/tiff", []byte("x"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]string{"error": "Invalid file type"},
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString("raw"))
				req.Header.Set("Content-Type", "text/plain")
				return req
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]string{"error": "No file part"},
		},
	}

	router := setupStubRouter(t, "Jasmine")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req(t))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}
