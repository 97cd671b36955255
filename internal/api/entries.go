package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onoffautomations/doorcore/internal/entry"
)

// ChannelEntryDeleted is broadcast when an entry is removed.
// Creation and update events are broadcast by the provisioning flow.
const ChannelEntryDeleted = "entry.deleted"

// handleListEntries returns all configured door entries ordered by title.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Error("listing entries failed", "error", err)
		writeInternalError(w, "failed to list entries")
		return
	}
	if entries == nil {
		entries = []entry.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleGetEntry returns a single entry by ID.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("fetching entry failed", "entry_id", id, "error", err)
		writeInternalError(w, "failed to fetch entry")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// handleDeleteEntry removes an entry and its recorded action results.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("deleting entry failed", "entry_id", id, "error", err)
		writeInternalError(w, "failed to delete entry")
		return
	}

	s.dispatcher.Forget(id)
	s.hub.Broadcast(ChannelEntryDeleted, map[string]string{"id": id})
	s.logger.Info("entry deleted", "entry_id", id)

	w.WriteHeader(http.StatusNoContent)
}
