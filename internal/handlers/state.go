package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloom/internal/models"
	"bloom/internal/profilestore"
	"bloom/internal/syncer"
)

type StateHandler struct {
	sessions *syncer.Manager
}

func NewStateHandler(sessions *syncer.Manager) *StateHandler {
	return &StateHandler{sessions: sessions}
}

// Get returns the session status and the nine slots as one snapshot.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// UpdateSlot replaces one slot wholesale. The setter applies the change to
// memory synchronously; durability is fire-and-forget, so success here
// means "accepted", not "persisted".
func (h *StateHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSync(h.sessions, w, r)
	if !ok {
		return
	}

	slot := chi.URLParam(r, "slot")
	dec := json.NewDecoder(r.Body)
	var err error
	switch slot {
	case profilestore.SlotDisplayName:
		var v string
		if err = dec.Decode(&v); err == nil {
			s.SetDisplayName(v)
		}
	case profilestore.SlotCompanionName:
		var v string
		if err = dec.Decode(&v); err == nil {
			s.SetCompanionName(v)
		}
	case profilestore.SlotTasks:
		var v []models.Task
		if err = dec.Decode(&v); err == nil {
			s.SetTasks(v)
		}
	case profilestore.SlotGoals:
		var v []models.Goal
		if err = dec.Decode(&v); err == nil {
			s.SetGoals(v)
		}
	case profilestore.SlotHealthMetrics:
		var v []models.HealthMetric
		if err = dec.Decode(&v); err == nil {
			s.SetHealthMetrics(v)
		}
	case profilestore.SlotCycleInfo:
		var v models.CycleInfo
		if err = dec.Decode(&v); err == nil {
			s.SetCycleInfo(v)
		}
	case profilestore.SlotSymptoms:
		var v []models.SymptomLog
		if err = dec.Decode(&v); err == nil {
			s.SetSymptoms(v)
		}
	case profilestore.SlotDiaryEntries:
		var v []models.DiaryEntry
		if err = dec.Decode(&v); err == nil {
			s.SetDiaryEntries(v)
		}
	case profilestore.SlotPartnerReflection:
		var v models.PartnerReflection
		if err = dec.Decode(&v); err == nil {
			s.SetPartnerReflection(v)
		}
	case profilestore.SlotChatHistory:
		var v []models.ChatMessage
		if err = dec.Decode(&v); err == nil {
			s.SetChatHistory(v)
		}
	default:
		http.Error(w, "unknown slot", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
