package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/domain/service"
)

// FileField is the multipart part name the classification service reads
const FileField = "file"

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// RawResponse is an undecoded response of the classification service
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ImageClient is an HTTP client for the image classification service
type ImageClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewImageClient creates a new classification service client.
// A zero timeout leaves the transport defaults in place.
func NewImageClient(endpoint string, timeout time.Duration) *ImageClient {
	return &ImageClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL files are posted to
func (c *ImageClient) Endpoint() string {
	return c.endpoint
}

// Upload posts the file as a single multipart part and returns the raw response
func (c *ImageClient) Upload(ctx context.Context, file *entity.SelectedFile) (*RawResponse, error) {
	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// Predict uploads the file and decodes the JSON response. A non-2xx status is
// returned as a response when its body carries an error field, and as a
// transport error otherwise.
func (c *ImageClient) Predict(ctx context.Context, file *entity.SelectedFile) (*entity.ClassificationResponse, error) {
	raw, err := c.Upload(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrTransport, err)
	}

	var result entity.ClassificationResponse
	if err := json.Unmarshal(raw.Body, &result); err != nil {
		return nil, fmt.Errorf("%w: status %d: failed to decode response: %w", service.ErrTransport, raw.StatusCode, err)
	}

	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		if result.Result().Kind == entity.ResultApplicationError {
			return &result, nil
		}
		return nil, fmt.Errorf("%w: classification service returned status %d: %s",
			service.ErrTransport, raw.StatusCode, truncate(string(raw.Body), 256))
	}

	return &result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(file *entity.SelectedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
