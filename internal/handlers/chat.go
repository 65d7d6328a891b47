package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"bloom/internal/companion"
	"bloom/internal/models"
	"bloom/internal/syncer"
)

type ChatHandler struct {
	sessions *syncer.Manager
	ai       *companion.Client
}

func NewChatHandler(sessions *syncer.Manager, ai *companion.Client) *ChatHandler {
	return &ChatHandler{sessions: sessions, ai: ai}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Send appends the user's message, asks the text-generation service for the
// companion's reply, and appends that too. The user's message stays in the
// history even when the service call fails.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(req.Message)

	snap := s.Snapshot()
	s.AppendChatMessage(models.RoleUser, message)

	resp, err := h.ai.Generate(r.Context(), companion.GenerateRequest{
		CompanionName: snap.Profile.CompanionName,
		History:       snap.Profile.ChatHistory,
		Message:       message,
	})
	if err != nil {
		http.Error(w, "companion unavailable", http.StatusBadGateway)
		return
	}

	s.AppendChatMessage(models.RoleModel, resp.Reply)
	writeJSON(w, http.StatusOK, map[string]string{"reply": resp.Reply})
}
