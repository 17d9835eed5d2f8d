package router

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/infrastructure/config"
	"github.com/grainlens/uploader/internal/infrastructure/metrics"
	"github.com/grainlens/uploader/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedClassifier string

func (f fixedClassifier) Classify(context.Context, *entity.SelectedFile) (*entity.ClassificationResponse, error) {
	return &entity.ClassificationResponse{PredictedClass: []byte(`"` + string(f) + `"`)}, nil
}

func uploadBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func setupWeb(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()

	cfg := config.Default()
	m := metrics.New()
	out := display.NewMemoryOutput()
	uc := usecase.NewUploadClassifier(fixedClassifier("Karacadag"), display.New(display.HTMLFormatter{}, out), nil, m, 0)
	t.Cleanup(uc.Close)

	return Setup(cfg, uc, out, m, zap.NewNop()), m
}

func TestSetup_Routes(t *testing.T) {
	router, _ := setupWeb(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/result", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestSetup_UploadRecordsMetrics(t *testing.T) {
	router, m := setupWeb(t)

	body, contentType := uploadBody(t, "file", "grain.jpg", []byte("jpeg"))
	req, _ := http.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Predicted Rice Type: Karacadag")

	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `uploader_classifications_total{outcome="success"} 1`)

	count, err := testutil.GatherAndCount(m.Registry(), "uploader_classifications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSetup_UsesServerUploadLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxUploadBytes = 1024
	cfg.Stub.MaxUploadBytes = 1 << 30
	out := display.NewMemoryOutput()
	uc := usecase.NewUploadClassifier(fixedClassifier("Basmati"), display.New(display.HTMLFormatter{}, out), nil, nil, 0)
	t.Cleanup(uc.Close)
	router := Setup(cfg, uc, out, nil, zap.NewNop())

	body, contentType := uploadBody(t, "file", "grain.jpg", bytes.Repeat([]byte("x"), 4096))
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/classify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, out.Writes())
}

func TestSetup_CORS(t *testing.T) {
	router, _ := setupWeb(t)

	t.Run("answers preflight", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, "/upload", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("sets origin on simple request", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/result", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSetupStub(t *testing.T) {
	cfg := config.Default()

	t.Run("predicts configured label", func(t *testing.T) {
		router, err := SetupStub(&cfg.Stub, cfg.Watch.Extensions, zap.NewNop())
		require.NoError(t, err)

		body, contentType := uploadBody(t, "file", "grain.png", []byte("png"))
		req, _ := http.NewRequest(http.MethodPost, "/predict", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"predicted_class":"Basmati"}`, w.Body.String())
	})

	t.Run("serves readiness without upstream", func(t *testing.T) {
		router, err := SetupStub(&cfg.Stub, cfg.Watch.Extensions, zap.NewNop())
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects unknown label", func(t *testing.T) {
		stub := cfg.Stub
		stub.Label = "Wild"

		_, err := SetupStub(&stub, cfg.Watch.Extensions, zap.NewNop())
		assert.Error(t, err)
	})
}
