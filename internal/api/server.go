// Package api exposes the engine over HTTP. Handlers decode parameters,
// delegate to the collector, store, and scheduler, and encode results; no
// domain logic lives here.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/statline/statline/internal/models"
)

// Collector takes live snapshots for the current-metrics endpoint.
type Collector interface {
	Collect(ctx context.Context) (*models.MetricsRecord, error)
}

// MetricsStore answers queries over persisted records.
type MetricsStore interface {
	Latest(ctx context.Context) (*models.MetricsRecord, error)
	Range(ctx context.Context, start, end time.Time) ([]models.MetricsRecord, error)
	Recent(ctx context.Context, d time.Duration) ([]models.MetricsRecord, error)
	Stats(ctx context.Context, start, end time.Time) (*models.StatsSummary, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler controls the periodic collection loop.
type Scheduler interface {
	Start() bool
	Stop() bool
	Configure(interval time.Duration) error
	RunOnce(ctx context.Context) (*models.MetricsRecord, error)
	Status() models.SchedulerStatus
}

// Server routes HTTP requests to the engine.
type Server struct {
	collector     Collector
	store         MetricsStore
	scheduler     Scheduler
	retentionDays int
	logger        *zap.Logger
	router        *mux.Router
}

// NewServer wires the HTTP surface. retentionDays is the default window for
// cleanup requests that don't specify one.
func NewServer(collector Collector, store MetricsStore, scheduler Scheduler, retentionDays int, logger *zap.Logger) *Server {
	s := &Server{
		collector:     collector,
		store:         store,
		scheduler:     scheduler,
		retentionDays: retentionDays,
		logger:        logger,
		router:        mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	m := s.router.PathPrefix("/monitor").Subrouter()
	m.HandleFunc("/current", s.handleCurrent).Methods("GET")
	m.HandleFunc("/latest", s.handleLatest).Methods("GET")
	m.HandleFunc("/history", s.handleHistory).Methods("GET")
	m.HandleFunc("/history/range", s.handleHistoryRange).Methods("GET")
	m.HandleFunc("/stats", s.handleStats).Methods("GET")
	m.HandleFunc("/collect", s.handleCollect).Methods("POST")
	m.HandleFunc("/cleanup", s.handleCleanup).Methods("POST")
	m.HandleFunc("/scheduler/status", s.handleSchedulerStatus).Methods("GET")
	m.HandleFunc("/scheduler/start", s.handleSchedulerStart).Methods("POST")
	m.HandleFunc("/scheduler/stop", s.handleSchedulerStop).Methods("POST")
	m.HandleFunc("/scheduler/configure", s.handleSchedulerConfigure).Methods("POST")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware adds CORS headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		s.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// fail maps engine failure kinds onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		s.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrBusy):
		s.writeError(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("Request failed", zap.Error(err))
		s.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
