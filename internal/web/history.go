package web

import (
	"errors"
	"net/http"
	"strconv"

	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/history"
)

// historyAvailable answers 503 when no archive is configured.
func (s *Server) historyAvailable(w http.ResponseWriter) bool {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history archive is disabled")
		return false
	}
	return true
}

func (s *Server) historyError(w http.ResponseWriter, err error) {
	if errors.Is(err, scouterrors.ErrRecordNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error().Err(err).Msg("history request failed")
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		recs []history.Record
		err  error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		recs, err = s.history.Search(r.Context(), q, limit)
	} else {
		recs, err = s.history.List(r.Context(), limit)
	}
	if err != nil {
		s.historyError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	if err := s.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.historyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistoryArchive saves the current research report.
func (s *Server) handleHistoryArchive(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	rec, err := s.history.Save(r.Context(), s.research.Report(), s.research.State().IsCompleted)
	if err != nil {
		if errors.Is(err, scouterrors.ErrEmptyValue) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.historyError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// handleHistoryOpen loads an archived report back into the research store.
func (s *Server) handleHistoryOpen(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	s.research.LoadReport(rec.Report, rec.Status == history.StatusCompleted)
	s.writeJSON(w, http.StatusOK, s.research.State())
}
