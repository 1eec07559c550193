package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
)

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Set   bool   `json:"set"`
}

type settingRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !core.IsEditableSetting(key) {
		respondError(w, http.StatusNotFound, "unknown setting")
		return
	}

	value, err := s.settings.Get(r.Context(), key, "")
	if err != nil {
		s.logger.Error("reading setting failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to read setting")
		return
	}

	resp := settingResponse{Key: key, Value: core.DisplaySetting(key, value), Set: value != ""}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !core.IsEditableSetting(key) {
		respondError(w, http.StatusNotFound, "unknown setting")
		return
	}

	var req settingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Value == nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value := strings.TrimSpace(*req.Value)
	if err := core.ValidateSetting(key, value); err != nil {
		respondDomainError(w, err, "invalid setting value")
		return
	}

	if err := s.settings.SetSetting(r.Context(), key, value); err != nil {
		s.logger.Error("writing setting failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	s.logger.Info("setting updated", "key", key)

	w.WriteHeader(http.StatusNoContent)
}
