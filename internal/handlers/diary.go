package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"bloom/internal/models"
	"bloom/internal/syncer"
)

type DiaryHandler struct {
	sessions *syncer.Manager
}

func NewDiaryHandler(sessions *syncer.Manager) *DiaryHandler {
	return &DiaryHandler{sessions: sessions}
}

type diaryEntryRequest struct {
	DailyRemark        string `json:"daily_remark"`
	DiaryEntry         string `json:"diary_entry"`
	WantsNeedsProgress string `json:"wants_needs_progress"`
	Mood               string `json:"mood"`
	EnergyLevels       string `json:"energy_levels"`
	PartnerReflection  string `json:"partner_reflection"`
}

// Append records a daily reflection. Entries are append-only; there is no
// edit or delete surface.
func (h *DiaryHandler) Append(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var req diaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DailyRemark) == "" && strings.TrimSpace(req.DiaryEntry) == "" {
		http.Error(w, "daily_remark or diary_entry required", http.StatusBadRequest)
		return
	}
	entry := s.AppendDiaryEntry(models.DiaryEntry{
		DailyRemark:        req.DailyRemark,
		DiaryEntry:         req.DiaryEntry,
		WantsNeedsProgress: req.WantsNeedsProgress,
		Mood:               req.Mood,
		EnergyLevels:       req.EnergyLevels,
		PartnerReflection:  req.PartnerReflection,
	})
	writeJSON(w, http.StatusCreated, entry)
}

// SavePartnerReflection replaces the singleton record wholesale.
func (h *DiaryHandler) SavePartnerReflection(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	var pr models.PartnerReflection
	if err := json.NewDecoder(r.Body).Decode(&pr); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.SavePartnerReflection(pr)
	w.WriteHeader(http.StatusNoContent)
}
