package handler

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	endpoint string
	dialer   *net.Dialer
}

// NewHealthHandler creates a new health handler. An empty endpoint means
// the process serves no upstream (the stub endpoint itself).
func NewHealthHandler(endpoint string) *HealthHandler {
	return &HealthHandler{
		endpoint: endpoint,
		dialer:   &net.Dialer{},
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]string)
	if h.endpoint == "" {
		components["classifier"] = "not configured"
	} else {
		components["classifier"] = h.endpoint
	}

	c.JSON(http.StatusOK, HealthStatus{
		Status:     "healthy",
		Components: components,
	})
}

// Ready handles GET /ready. It checks the classification endpoint accepts
// TCP connections; it does not send a classification request.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.endpoint == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	addr, err := dialAddress(h.endpoint)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "invalid classifier endpoint"})
		return
	}

	conn, err := h.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "classifier unreachable"})
		return
	}
	_ = conn.Close()

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func dialAddress(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
