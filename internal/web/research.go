package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/research"
)

func (s *Server) handleResearchGet(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.research.State())
}

func (s *Server) handleResearchReport(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.research.Report())
}

// handleResearchLoad merges a report payload. ?legacy=1 skips empty strings
// and false values the way older clients expect.
func (s *Server) handleResearchLoad(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	load := s.research.LoadFromJSON
	if r.URL.Query().Get("legacy") == "1" {
		load = s.research.LoadFromJSONLegacy
	}
	if err := load(data); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.research.State())
}

func (s *Server) handleResearchReset(w http.ResponseWriter, _ *http.Request) {
	s.research.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSectionAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    constants.SectionType `json:"type"`
		Content string                `json:"content"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = constants.SectionContent
	}
	if !req.Type.IsValid() {
		s.writeError(w, http.StatusBadRequest, "unknown section type: "+string(req.Type))
		return
	}
	s.writeJSON(w, http.StatusCreated, s.research.AddSection(req.Type, req.Content))
}

func (s *Server) handleSectionUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req research.SectionUpdate
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type != nil && !req.Type.IsValid() {
		s.writeError(w, http.StatusBadRequest, "unknown section type: "+string(*req.Type))
		return
	}
	if !s.research.UpdateSection(id, req) {
		s.writeError(w, http.StatusNotFound, scouterrors.ErrSectionNotFound.Error())
		return
	}
	sec, _ := s.research.Section(id)
	s.writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleSectionDelete(w http.ResponseWriter, r *http.Request) {
	if !s.research.DeleteSection(r.PathValue("id")) {
		s.writeError(w, http.StatusNotFound, scouterrors.ErrSectionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSectionMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		s.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	if err := s.research.MoveSection(*req.From, *req.To); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scouterrors.ErrValueOutOfRange) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.research.State().Outline)
}
