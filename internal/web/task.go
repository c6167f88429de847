package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/ticker"
)

func (s *Server) handleTaskGet(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskClear(w http.ResponseWriter, r *http.Request) {
	s.tasks.ClearTask(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		s.writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	s.tasks.StartTask(r.Context(), req.Topic)
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskStage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage string `json:"stage"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Stage == "" {
		s.writeError(w, http.StatusBadRequest, "stage is required")
		return
	}
	s.tasks.SetStage(r.Context(), req.Stage)
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Progress *int `json:"progress"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Progress == nil {
		s.writeError(w, http.StatusBadRequest, "progress is required")
		return
	}
	s.tasks.SetProgress(r.Context(), *req.Progress)
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level   constants.LogLevel `json:"level"`
		Message string             `json:"message"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Level == "" {
		req.Level = constants.LogInfo
	}
	if !req.Level.IsValid() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown log level %q", req.Level))
		return
	}
	s.tasks.AddLog(r.Context(), req.Level, req.Message)
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	var req activetask.StatsUpdate
	if !s.decode(w, r, &req) {
		return
	}
	s.tasks.UpdateStats(r.Context(), req)
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	s.tasks.MarkCompleted(r.Context())
	s.writeJSON(w, http.StatusOK, s.tasks.Status())
}

// clockEvent is one frame of the elapsed-time stream.
type clockEvent struct {
	ElapsedTime int64  `json:"elapsedTime"`
	IsRunning   bool   `json:"isRunning"`
	Stage       string `json:"stage"`
	Progress    int    `json:"progress"`
}

// handleTaskClock streams the elapsed time once per tick. The ticker belongs to
// this request and is stopped when the client goes away.
func (s *Server) handleTaskClock(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	ticks := make(chan struct{}, 1)
	tk := ticker.Start(ctx, s.tickInterval, func() {
		s.tasks.UpdateTick()
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer tk.Stop()

	send := func() bool {
		st := s.tasks.Status()
		if _, err := fmt.Fprint(w, "data: "); err != nil {
			return false
		}
		s.writeRaw(w, clockEvent{
			ElapsedTime: st.ElapsedTime,
			IsRunning:   st.IsRunning,
			Stage:       st.Stage,
			Progress:    st.Progress,
		})
		if _, err := fmt.Fprint(w, "\n\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !send() {
				return
			}
		}
	}
}
