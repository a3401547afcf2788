// FilePath: internal/status/status.go
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/monitoring"
)

// Info is the static part of the status response, fixed after startup.
type Info struct {
	DeviceUID    string `json:"device_uid"`
	DeviceName   string `json:"device_name,omitempty"`
	GPUAvailable bool   `json:"gpu_available"`
}

// Server is the optional read-only local status endpoint. It never touches
// the device session.
type Server struct {
	router *mux.Router
	srv    *http.Server
	stats  *monitoring.Service
	info   Info
}

// New creates a status server instance
func New(cfg *config.Config, stats *monitoring.Service, info Info) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		stats:  stats,
		info:   info,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Status.Host, cfg.Status.Port),
			Handler:      handlers.RecoveryHandler()(handlers.CompressHandler(router)),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

// Start begins listening in the background.
func (s *Server) Start() {
	go func() {
		nuts.L.Infof("[Status] Serving status on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Status] Error starting status server: %v", err)
		}
	}()
}

// Shutdown stops the listener, waiting at most for ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	v1.HandleFunc("/status", s.handleStatus()).Methods(http.MethodGet)
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

// handleStatus reports the pipeline counters and device identity.
func (s *Server) handleStatus() http.HandlerFunc {
	type response struct {
		Info
		monitoring.Snapshot
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(response{
			Info:     s.info,
			Snapshot: s.stats.Snapshot(),
		}); err != nil {
			nuts.L.Errorf("[Status] Failed to encode status response: %v", err)
		}
	}
}
