package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/adapter/http/handler"
	"github.com/grainlens/uploader/internal/adapter/http/middleware"
	"github.com/grainlens/uploader/internal/infrastructure/config"
	"github.com/grainlens/uploader/internal/infrastructure/metrics"
	"github.com/grainlens/uploader/internal/usecase"
)

// corsConfig lets a page served elsewhere post files to the front
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
	}
}

func newEngine(logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(cors.New(corsConfig()))

	return router
}

// Setup creates the web front router. output must be the element the
// upload classifier's presenter writes to.
func Setup(cfg *config.Config, uploadUC usecase.UploadClassifier, output *display.MemoryOutput, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := newEngine(logger)
	router.SetHTMLTemplate(handler.IndexTemplate())

	// Health endpoints
	healthHandler := handler.NewHealthHandler(cfg.Classifier.Endpoint)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	uploadHandler := handler.NewUploadHandler(uploadUC, output, cfg.Watch.Extensions, cfg.Server.MaxUploadBytes, logger)

	// Page routes
	router.GET("/", uploadHandler.Index)
	router.POST("/upload", uploadHandler.Upload)
	router.GET("/result", uploadHandler.Result)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", uploadHandler.Classify)
	}

	return router
}

// SetupStub creates the router of the stand-in classification service
func SetupStub(cfg *config.StubConfig, extensions []string, logger *zap.Logger) (*gin.Engine, error) {
	stubHandler, err := handler.NewStubHandler(cfg.Label, extensions, cfg.MaxUploadBytes, logger)
	if err != nil {
		return nil, err
	}

	router := newEngine(logger)

	healthHandler := handler.NewHealthHandler("")
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.POST("/predict", stubHandler.Predict)

	return router, nil
}
