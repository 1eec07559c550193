package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/config"
)

// maxBodyBytes bounds request bodies; the chat history dominates.
const maxBodyBytes = 1 << 20

// SessionHeader may carry the session id when the body omits it.
const SessionHeader = "X-Session-Id"

type clearContextRequest struct {
	SessionID string `json:"sessionId"`
}

type commandResponse struct {
	Name     string   `json:"name"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// handleChat runs one chat turn. Turn failures are reported in the body with
// success=false and a 200 status, as the board UI expects.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(SessionHeader)
	}

	respondJSON(w, http.StatusOK, s.assistant.Chat(r.Context(), req))
}

func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	var req clearContextRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(SessionHeader)
	}

	respondJSON(w, http.StatusOK, s.assistant.ClearContext(req.SessionID))
}

// handleListCommands lists the catalog. Clients may revalidate with
// If-None-Match.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	specs := s.assistant.Catalog().Commands()
	out := make([]commandResponse, 0, len(specs))
	for _, spec := range specs {
		optional := spec.Optional()
		if optional == nil {
			optional = []string{}
		}
		out = append(out, commandResponse{
			Name:     spec.Name,
			Required: spec.Required(),
			Optional: optional,
		})
	}

	body, err := json.Marshal(out)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode commands")
		return
	}
	etag := config.CalculateETag(body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
