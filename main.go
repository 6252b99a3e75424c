package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-thumbnailer/internal/ffmpeg"
	"video-thumbnailer/internal/filesystem"
	"video-thumbnailer/internal/handlers"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/memory"
	"video-thumbnailer/internal/metrics"
	"video-thumbnailer/internal/middleware"
	"video-thumbnailer/internal/startup"
	"video-thumbnailer/internal/thumb"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	// metricsCollectionInterval is how often gauges derived from runtime
	// state are refreshed.
	metricsCollectionInterval = 15 * time.Second

	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	startTime := time.Now()

	// Set GOMEMLIMIT before anything sizeable is allocated
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Filesystem metrics
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media": config.MediaDir,
	}))
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	// Initialize codec backend
	backendStart := time.Now()
	backend := ffmpeg.New()
	thumber, err := thumb.Init(backend, config.FFmpegLogLevel)
	if err != nil {
		startup.LogFatal("Failed to initialize codec backend: %v", err)
	}
	startup.LogBackendInit(backend.Name(), config.FFmpegLogLevel, time.Since(backendStart))
	startup.LogAdmissionInit(config.Workers)

	// Memory monitor for load shedding
	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	// Initialize handlers
	h := handlers.New(thumber, backend.Name(), config, memMonitor)

	// Metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion, backend.Name())
	collector := metrics.NewCollector(h.Admission(), metricsCollectionInterval)
	collector.Start()

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	// Create servers
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      0, // decoding a long GOP can take a while
		IdleTimeout:       idleTimeout,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h.MetricsHandler())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(srv)
	})
	if metricsSrv != nil {
		g.Go(func() error {
			return serve(metricsSrv)
		})
	}

	h.SetReady(true)
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	g.Go(func() error {
		<-gctx.Done()
		reason := "server error"
		if ctx.Err() != nil {
			reason = "signal"
		}
		h.SetReady(false)
		shutdown(reason, config.ShutdownTimeout, srv, metricsSrv, collector, memMonitor)
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server error: %v", err)
		os.Exit(1)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(r)
	return r
}

func newMetricsServer(port string, metricsHandler http.Handler) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	return &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       idleTimeout,
	}
}

// serve runs srv until it is shut down. A clean shutdown is not an error.
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdown(reason string, timeout time.Duration, srv, metricsSrv *http.Server, collector *metrics.Collector, memMonitor *memory.Monitor) {
	startup.LogShutdownInitiated(reason)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	memMonitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
