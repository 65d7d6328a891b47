package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bloom/internal/syncer"
)

type TasksHandler struct {
	sessions *syncer.Manager
}

func NewTasksHandler(sessions *syncer.Manager) *TasksHandler {
	return &TasksHandler{sessions: sessions}
}

type addTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	task, err := s.AddTask(strings.TrimSpace(req.Text), req.Priority)
	if err != nil {
		if errors.Is(err, syncer.ErrInvalidPriority) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "could not add task", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TasksHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	if !s.ToggleTask(chi.URLParam(r, "id")) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	if !s.RemoveTask(chi.URLParam(r, "id")) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
