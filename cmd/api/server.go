package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/i-christian/fileDrop/internal/files"
	"github.com/i-christian/fileDrop/internal/jobs"
	"github.com/i-christian/fileDrop/internal/public"
	"github.com/i-christian/fileDrop/internal/router"
	"golang.org/x/net/netutil"
)

func (app *application) routes() http.Handler {
	publicHandler := public.NewPublicHandler(app.config.Env, app.version, app.store.Location(), app.logger)

	fileService := files.NewFileService(app.store, app.logger)
	fileHandler := files.NewFileHandler(app.config.MaxUploadSize, fileService, app.logger)

	routeConfig := &router.RoutesConfig{
		AllowedOrigins: app.config.CORSOrigins,
		Rps:            app.config.Limiter.RPS,
		Burst:          app.config.Limiter.Burst,
		LimiterEnabled: app.config.Limiter.Enabled,
	}
	return router.RegisterRoutes(routeConfig, publicHandler, fileHandler)
}

const (
	cleanupInterval = time.Hour
	staleUploadAge  = time.Hour
)

// startBackgroundJobs launches maintenance work for backends that need it.
func (app *application) startBackgroundJobs(ctx context.Context) {
	cleaner, ok := app.store.(jobs.StaleUploadCleaner)
	if !ok {
		return
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		jobs.RunPeriodically(ctx, cleaner, cleanupInterval, staleUploadAge, app.logger)
	}()
}

func (app *application) serve() error {
	app.publishMetrics()

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	app.startBackgroundJobs(jobsCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	if app.config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, app.config.MaxConnections)
	}

	shutdownError := make(chan error, 1)
	go func() {
		app.logger.Info(fmt.Sprintf("server starting on http://%s:%d", app.config.Domain, app.config.Port), "env", app.config.Env)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownError <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-shutdownError:
		return err
	case sig := <-quit:
		app.logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("completing background tasks...")
	stopJobs()
	app.wg.Wait()
	if closer, ok := app.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			app.logger.Warn("failed to release file storage", "error", err)
		}
	}

	app.logger.Info("graceful shutdown complete")
	return nil
}

func (app *application) publishMetrics() {
	expvar.NewString("version").Set(app.version)
	expvar.NewString("storage").Set(app.store.Location())
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))
}
