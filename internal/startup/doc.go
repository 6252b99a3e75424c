// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - MEDIA_DIR: Root directory that request paths are resolved against (default: /media)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_LOG_LEVEL: Codec library verbosity - quiet, info, debug (default: quiet)
//   - DEFAULT_POSITION: Seek position used when a request has none (default: 0.5)
//   - THUMBNAIL_WORKERS: Concurrent extraction limit (default: one per CPU, max 16)
//   - SHUTDOWN_TIMEOUT: Graceful shutdown deadline as Go duration (default: 30s)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// Invalid values are logged and replaced by their defaults.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X video-thumbnailer/internal/startup.Version=1.2.0"
//
// # Lifecycle Logging
//
//   - [LogBackendInit]: Codec backend name and verbosity
//   - [LogAdmissionInit]: Extraction concurrency
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStep], [LogShutdownComplete]
package startup
