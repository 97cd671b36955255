package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onoffautomations/doorcore/internal/entry"
	"github.com/onoffautomations/doorcore/internal/hub"
)

// handleListActions returns the action vocabulary with display labels.
func (s *Server) handleListActions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"actions": hub.Actions(),
	})
}

// handleDispatchAction fires one door action against an entry's hub.
//
// The HTTP status reflects whether the dispatch was attempted, not whether
// the hub succeeded: a timeout or hub-side error is still a 200 with the
// classified result in the body. Callers read result.outcome.
func (s *Server) handleDispatchAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	action, err := hub.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	e, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("fetching entry for dispatch failed", "entry_id", id, "error", err)
		writeInternalError(w, "failed to fetch entry")
		return
	}

	ep := hub.Endpoint{Host: e.HubIP, Port: e.HubPort}
	result := s.dispatcher.Dispatch(r.Context(), e.ID, ep, e.DoorID, action)

	writeJSON(w, http.StatusOK, map[string]any{
		"entry_id": e.ID,
		"action":   action,
		"result":   result,
	})
}

// handleActionResults returns the last recorded result per action for an entry.
// Actions never attempted are absent.
func (s *Server) handleActionResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.repo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("fetching entry for results failed", "entry_id", id, "error", err)
		writeInternalError(w, "failed to fetch entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entry_id": id,
		"results":  s.dispatcher.LastResults(id),
	})
}
