package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grainlens/uploader/internal/adapter/client"
	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/infrastructure/metrics"
	"github.com/grainlens/uploader/internal/usecase"
)

// newUploadClassifier wires the classification client to an output element
func newUploadClassifier(output display.Output, m *metrics.Metrics) (usecase.UploadClassifier, error) {
	formatter, err := display.NewFormatter(cfg.Display.Format)
	if err != nil {
		return nil, err
	}

	imageClient := client.NewImageClient(cfg.Classifier.Endpoint, cfg.Classifier.Timeout)
	classifier := client.NewImageClassifier(imageClient)

	return usecase.NewUploadClassifier(classifier, display.New(formatter, output), logger, m, cfg.Classifier.Timeout), nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
