package service

import (
	"context"
	"errors"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// ErrTransport wraps every failure to obtain a decodable response:
// connection errors, non-2xx statuses without a JSON body, malformed JSON.
var ErrTransport = errors.New("classification transport failed")

// Classifier sends one file to the classification service
type Classifier interface {
	// Classify uploads the file and returns the decoded response.
	// Errors wrap ErrTransport.
	Classify(ctx context.Context, file *entity.SelectedFile) (*entity.ClassificationResponse, error)
}
