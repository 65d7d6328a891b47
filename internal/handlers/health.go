package handlers

import (
	"encoding/json"
	"net/http"

	"bloom/internal/syncer"
)

type HealthHandler struct {
	sessions *syncer.Manager
}

func NewHealthHandler(sessions *syncer.Manager) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

type logMetricRequest struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Mood   int    `json:"mood"`
	Energy int    `json:"energy"`
}

// LogMetric upserts the day's mood/energy sample.
func (h *HealthHandler) LogMetric(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req logMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := s.LogHealthMetric(req.Date, req.Mood, req.Energy); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type periodStartRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (h *HealthHandler) PeriodStart(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req periodStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := s.LogPeriodStart(req.Date); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot().Profile.CycleInfo)
}

type logSymptomsRequest struct {
	Date     string   `json:"date"`
	Symptoms []string `json:"symptoms"`
	Notes    string   `json:"notes"`
}

func (h *HealthHandler) LogSymptoms(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req logSymptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	entry, err := s.LogSymptoms(req.Date, req.Symptoms, req.Notes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
