package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/adapter/http/router"
	"github.com/grainlens/uploader/internal/infrastructure/metrics"
)

const shutdownTimeout = 30 * time.Second

var withStub bool

// serveCmd runs the web front
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload page",
	Long: `Serves a page with a file input and a result area. Selecting an image
uploads it to the classification service and shows the predicted rice type.

With --with-stub a stand-in classification service runs alongside on the
stub address.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	// The page's result element always receives HTML.
	cfg.Display.Format = "html"

	m := metrics.New()
	out := display.NewMemoryOutput()
	uc, err := newUploadClassifier(out, m)
	if err != nil {
		return err
	}
	defer uc.Close()

	servers := []*http.Server{
		newServer(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), router.Setup(cfg, uc, out, m, logger)),
	}
	if withStub {
		stubRouter, err := router.SetupStub(&cfg.Stub, cfg.Watch.Extensions, logger.Named("stub"))
		if err != nil {
			return err
		}
		servers = append(servers, newServer(fmt.Sprintf("%s:%d", cfg.Stub.Host, cfg.Stub.Port), stubRouter))
	}

	return serve(ctx, logger, servers...)
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// serve runs every server until ctx is done or one of them fails, then
// shuts all of them down
func serve(ctx context.Context, log *zap.Logger, servers ...*http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv // per-iteration copy; go directive predates 1.22 loopvar semantics
		g.Go(func() error {
			log.Info("Starting server", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", zap.String("address", srv.Addr), zap.Error(err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	log.Info("Server exited")
	return err
}
