package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bloom/internal/syncer"
)

type GoalsHandler struct {
	sessions *syncer.Manager
}

func NewGoalsHandler(sessions *syncer.Manager) *GoalsHandler {
	return &GoalsHandler{sessions: sessions}
}

type addGoalRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Deadline    string `json:"deadline"`
	Description string `json:"description"`
}

func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req addGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	goal, err := s.AddGoal(strings.TrimSpace(req.Title), req.Category, req.Deadline, req.Description)
	if err != nil {
		if errors.Is(err, syncer.ErrInvalidCategory) || errors.Is(err, syncer.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "could not add goal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

type goalProgressRequest struct {
	Progress int `json:"progress"`
}

// Progress stores the new progress clamped to [0,100].
func (h *GoalsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req goalProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !s.SetGoalProgress(chi.URLParam(r, "id"), req.Progress) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
