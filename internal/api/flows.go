package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onoffautomations/doorcore/internal/entry"
	"github.com/onoffautomations/doorcore/internal/provisioning"
)

// Provisioning flow handlers. Each step submission returns either another
// form to render or a terminal result; validation failures are carried
// inside the form payload, not as HTTP errors.

// handleStartFlow opens a new provisioning flow.
func (s *Server) handleStartFlow(w http.ResponseWriter, r *http.Request) {
	result, err := s.flows.StartFlow(r.Context())
	if err != nil {
		s.logger.Error("starting flow failed", "error", err)
		writeInternalError(w, "failed to start flow")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubmitMode handles the auto/manual mode choice.
func (s *Server) handleSubmitMode(w http.ResponseWriter, r *http.Request) {
	var in provisioning.ModeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.SubmitModeSelect(r.Context(), chi.URLParam(r, "flowID"), in)
	s.writeFlowResult(w, result, err)
}

// handleSubmitManual handles the manual configuration form.
func (s *Server) handleSubmitManual(w http.ResponseWriter, r *http.Request) {
	var in provisioning.ManualInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.SubmitManual(r.Context(), chi.URLParam(r, "flowID"), in)
	s.writeFlowResult(w, result, err)
}

// handleSubmitDatabase handles the database connection form.
func (s *Server) handleSubmitDatabase(w http.ResponseWriter, r *http.Request) {
	var in provisioning.DatabaseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.SubmitDatabase(r.Context(), chi.URLParam(r, "flowID"), in)
	s.writeFlowResult(w, result, err)
}

// handleSubmitDoors handles the door selection step of the auto path.
func (s *Server) handleSubmitDoors(w http.ResponseWriter, r *http.Request) {
	var in provisioning.SelectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.SubmitDoorSelection(r.Context(), chi.URLParam(r, "flowID"), in)
	s.writeFlowResult(w, result, err)
}

// handleStartReconfigure opens a flow to edit an existing entry.
func (s *Server) handleStartReconfigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.flows.StartReconfigure(r.Context(), id)
	if err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("starting reconfigure failed", "entry_id", id, "error", err)
		writeInternalError(w, "failed to start reconfigure")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubmitReconfigure applies an edited configuration to the flow's entry.
func (s *Server) handleSubmitReconfigure(w http.ResponseWriter, r *http.Request) {
	var in provisioning.ManualInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.SubmitReconfigure(r.Context(), chi.URLParam(r, "flowID"), in)
	s.writeFlowResult(w, result, err)
}

// writeFlowResult maps flow outcomes and errors onto HTTP responses.
func (s *Server) writeFlowResult(w http.ResponseWriter, result *provisioning.Result, err error) {
	switch {
	case err == nil:
		status := http.StatusOK
		if result.Type == provisioning.ResultCreated {
			status = http.StatusCreated
		}
		writeJSON(w, status, result)
	case errors.Is(err, provisioning.ErrFlowNotFound):
		writeNotFound(w, "flow not found or expired")
	case errors.Is(err, provisioning.ErrStepMismatch):
		writeError(w, http.StatusConflict, ErrCodeConflict, "submission does not match the flow's current step")
	case errors.Is(err, provisioning.ErrInvalidMode):
		writeBadRequest(w, "unknown provisioning mode")
	default:
		s.logger.Error("flow submission failed", "error", err)
		writeInternalError(w, "flow submission failed")
	}
}
