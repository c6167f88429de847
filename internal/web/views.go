package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mrz1836/scout/internal/router"
)

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, router.Routes())
}

// handleView resolves any other GET path against the view route table.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	m, ok := router.Resolve(r.URL.EscapedPath())
	if !ok {
		s.writeError(w, http.StatusNotFound, "no view for "+r.URL.Path)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// writeRaw encodes v without a trailing newline, for SSE frames.
func (s *Server) writeRaw(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode sse frame")
		return
	}
	_, _ = w.Write(data)
}
