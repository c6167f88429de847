// Package web serves the task, research, history and route-table state over
// HTTP for the view layer.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/history"
	"github.com/mrz1836/scout/internal/research"
)

// maxBodyBytes bounds request bodies; a full report with notes fits well within.
const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Tasks    *activetask.Store
	Research *research.Store
	// History may be nil, in which case history endpoints answer 503.
	History *history.Store
	Logger  zerolog.Logger
	// TickInterval paces the elapsed-time stream. Zero uses one second.
	TickInterval time.Duration
}

// Server is the HTTP API server.
type Server struct {
	tasks        *activetask.Store
	research     *research.Store
	history      *history.Store
	logger       zerolog.Logger
	tickInterval time.Duration
	mux          *http.ServeMux
}

// New creates a new Server.
func New(opts Options) *Server {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = constants.DefaultTickInterval
	}
	s := &Server{
		tasks:        opts.Tasks,
		research:     opts.Research,
		history:      opts.History,
		logger:       opts.Logger.With().Str("component", "web").Logger(),
		tickInterval: interval,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func (s *Server) routes() {
	// Active task
	s.mux.HandleFunc("GET /api/task", s.handleTaskGet)
	s.mux.HandleFunc("DELETE /api/task", s.handleTaskClear)
	s.mux.HandleFunc("POST /api/task/start", s.handleTaskStart)
	s.mux.HandleFunc("POST /api/task/stage", s.handleTaskStage)
	s.mux.HandleFunc("POST /api/task/progress", s.handleTaskProgress)
	s.mux.HandleFunc("POST /api/task/log", s.handleTaskLog)
	s.mux.HandleFunc("POST /api/task/stats", s.handleTaskStats)
	s.mux.HandleFunc("POST /api/task/complete", s.handleTaskComplete)
	s.mux.HandleFunc("GET /api/task/clock", s.handleTaskClock)

	// Research report
	s.mux.HandleFunc("GET /api/research", s.handleResearchGet)
	s.mux.HandleFunc("PUT /api/research", s.handleResearchLoad)
	s.mux.HandleFunc("DELETE /api/research", s.handleResearchReset)
	s.mux.HandleFunc("GET /api/research/report", s.handleResearchReport)
	s.mux.HandleFunc("POST /api/research/sections", s.handleSectionAdd)
	s.mux.HandleFunc("POST /api/research/sections/move", s.handleSectionMove)
	s.mux.HandleFunc("PATCH /api/research/sections/{id}", s.handleSectionUpdate)
	s.mux.HandleFunc("DELETE /api/research/sections/{id}", s.handleSectionDelete)

	// History
	s.mux.HandleFunc("GET /api/history", s.handleHistoryList)
	s.mux.HandleFunc("POST /api/history", s.handleHistoryArchive)
	s.mux.HandleFunc("GET /api/history/{id}", s.handleHistoryGet)
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryDelete)
	s.mux.HandleFunc("POST /api/history/{id}/open", s.handleHistoryOpen)

	// Views
	s.mux.HandleFunc("GET /api/routes", s.handleRoutes)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{path...}", s.handleView)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("write json")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
