package client

import (
	"context"

	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/domain/service"
)

// ImageClassifier adapts ImageClient to the Classifier interface
type ImageClassifier struct {
	client *ImageClient
}

// NewImageClassifier creates a new ImageClassifier
func NewImageClassifier(client *ImageClient) service.Classifier {
	return &ImageClassifier{client: client}
}

// Classify uploads a single file
func (c *ImageClassifier) Classify(ctx context.Context, file *entity.SelectedFile) (*entity.ClassificationResponse, error) {
	return c.client.Predict(ctx, file)
}
