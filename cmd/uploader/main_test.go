package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/infrastructure/config"
)

func setupGlobals(t *testing.T, endpoint string) {
	t.Helper()

	cfg = config.Default()
	cfg.Classifier.Endpoint = endpoint
	cfg.Classifier.Timeout = 5 * time.Second
	logger = zap.NewNop()
	rawOutput = false
	t.Cleanup(func() { rawOutput = false })
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grain.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))
	return path
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunClassify(t *testing.T) {
	t.Run("prints the predicted class", func(t *testing.T) {
		srv := jsonServer(t, http.StatusOK, `{"predicted_class":"Jasmine"}`)
		setupGlobals(t, srv.URL)
		cmd, out := newTestCommand()

		require.NoError(t, runClassify(cmd, []string{writeImage(t)}))
		assert.Equal(t, "Predicted Rice Type: Jasmine\n", out.String())
	})

	t.Run("prints the service error", func(t *testing.T) {
		srv := jsonServer(t, http.StatusBadRequest, `{"error":"Invalid file type"}`)
		setupGlobals(t, srv.URL)
		cmd, out := newTestCommand()

		err := runClassify(cmd, []string{writeImage(t)})
		assert.Error(t, err)
		assert.Equal(t, "Error: Invalid file type\n", out.String())
	})

	t.Run("hides transport detail", func(t *testing.T) {
		srv := jsonServer(t, http.StatusInternalServerError, `boom`)
		setupGlobals(t, srv.URL)
		cmd, out := newTestCommand()

		err := runClassify(cmd, []string{writeImage(t)})
		assert.Error(t, err)
		assert.Equal(t, "An error occurred while processing the image.\n", out.String())
	})

	t.Run("missing file", func(t *testing.T) {
		setupGlobals(t, "http://127.0.0.1:1/predict")
		cmd, out := newTestCommand()

		assert.Error(t, runClassify(cmd, []string{filepath.Join(t.TempDir(), "nope.jpg")}))
		assert.Empty(t, out.String())
	})
}

func TestRunClassify_Raw(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		srv := jsonServer(t, http.StatusOK, `{"predicted_class":"Basmati"}`)
		setupGlobals(t, srv.URL)
		rawOutput = true
		cmd, out := newTestCommand()

		require.NoError(t, runClassify(cmd, []string{writeImage(t)}))
		assert.Contains(t, out.String(), "Status Code: 200\n")
		assert.Contains(t, out.String(), `Response Text: {"predicted_class":"Basmati"}`)
		assert.Contains(t, out.String(), "Response JSON: map[predicted_class:Basmati]")
	})

	t.Run("non json body", func(t *testing.T) {
		srv := jsonServer(t, http.StatusInternalServerError, `<html>oops</html>`)
		setupGlobals(t, srv.URL)
		rawOutput = true
		cmd, out := newTestCommand()

		require.NoError(t, runClassify(cmd, []string{writeImage(t)}))
		assert.Contains(t, out.String(), "Status Code: 500\n")
		assert.Contains(t, out.String(), "Response is not valid JSON")
	})
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := newServer(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, zap.NewNop(), srv) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = serve(context.Background(), zap.NewNop(), newServer(ln.Addr().String(), http.NotFoundHandler()))
	assert.Error(t, err)
}
