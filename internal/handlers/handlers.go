package handlers

import (
	"net/http"
	"sync/atomic"
	"time"

	"video-thumbnailer/internal/filesystem"
	"video-thumbnailer/internal/startup"
	"video-thumbnailer/internal/streaming"
	"video-thumbnailer/internal/thumb"

	"github.com/gorilla/mux"
)

// LoadShedder reports whether new extractions should be refused.
// *memory.Monitor implements it.
type LoadShedder interface {
	Overloaded() bool
}

type neverShed struct{}

func (neverShed) Overloaded() bool { return false }

// Handlers serves thumbnail extraction over HTTP.
type Handlers struct {
	thumber         thumb.Thumber
	backend         string
	mediaDir        string
	defaultPosition float64
	retry           filesystem.RetryConfig
	bodyConfig      streaming.Config
	admission       *Admission
	shedder         LoadShedder
	startTime       time.Time
	ready           atomic.Bool
}

// New creates the handler set. shedder may be nil to disable load shedding.
func New(thumber thumb.Thumber, backend string, config *startup.Config, shedder LoadShedder) *Handlers {
	if shedder == nil {
		shedder = neverShed{}
	}
	return &Handlers{
		thumber:         thumber,
		backend:         backend,
		mediaDir:        config.MediaDir,
		defaultPosition: config.DefaultPosition,
		retry:           filesystem.DefaultRetryConfig(),
		bodyConfig:      streaming.DefaultConfig(),
		admission:       NewAdmission(config.Workers),
		shedder:         shedder,
		startTime:       time.Now(),
	}
}

// RegisterRoutes adds the API and probe routes to router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnail/{path:.+}", h.GetThumbnail).Methods(http.MethodGet, http.MethodHead).Name("thumbnail")
	api.HandleFunc("/probe/{path:.+}", h.ProbeVideo).Methods(http.MethodGet).Name("probe")

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet).Name("healthz")
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("livez")
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("readyz")
	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")
}

// Admission returns the concurrency gate shared by the extraction handlers.
func (h *Handlers) Admission() *Admission {
	return h.admission
}

// SetReady marks the service ready (or not) for readiness probes.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}
